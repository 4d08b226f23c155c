// Package messaging 生成聊天深链接
package messaging

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	propertyInquiry = "Olá! Tenho interesse no terreno: %s"
	listingInquiry  = "Hallo! Ich interessiere mich für Ihre Anzeige: %s"
)

// WhatsAppLink 生成 https://wa.me/{digits}?text={text}
//
// number 中的非数字字符被忽略；text 为空时不带 text 参数。
func WhatsAppLink(number, text string) string {
	link := "https://wa.me/" + Digits(number)
	if text == "" {
		return link
	}
	return link + "?text=" + encodeComponent(text)
}

// PropertyInquiryLink 展示站地产条目咨询链接
func PropertyInquiryLink(number, title string) string {
	return WhatsAppLink(number, fmt.Sprintf(propertyInquiry, title))
}

// ListingInquiryLink 市场商品咨询链接
func ListingInquiryLink(number, title string) string {
	return WhatsAppLink(number, fmt.Sprintf(listingInquiry, title))
}

// Digits 只保留 ASCII 数字
func Digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// encodeComponent 查询参数编码，空格编码为 %20
func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
