package site

import (
	"math"
	"strconv"
	"strings"

	"marketplace/internal/shared/i18n"
	"marketplace/internal/shared/messaging"
	"marketplace/internal/shared/model"
)

// Card 展示站地产卡片（已本地化）
type Card struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Details     []Detail `json:"details"`
	Price       float64  `json:"price"`
	PriceLabel  string   `json:"price_label"`
	Video       *Video   `json:"video,omitempty"`
	ContactURL  string   `json:"contact_url"`
	ContactText string   `json:"contact_text"`
}

// Detail 卡片上的一行属性
type Detail struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Value string `json:"value"`
}

// Video 视频区域
type Video struct {
	Type     model.VideoType `json:"type"`
	EmbedURL string          `json:"embed_url,omitempty"`
	URL      string          `json:"url,omitempty"`
}

// BuildCard 按语言组装地产卡片
func BuildCard(p *model.Property, lang i18n.Lang, whatsapp string) *Card {
	title := p.Title(string(lang))
	card := &Card{
		ID:          p.ID,
		Title:       title,
		Description: p.Description(string(lang)),
		Price:       p.Price,
		PriceLabel:  FormatBRL(p.Price),
		Video:       buildVideo(p),
		ContactURL:  messaging.PropertyInquiryLink(whatsapp, title),
		ContactText: i18n.T(lang, "schedule-visit"),
	}

	card.Details = append(card.Details,
		Detail{Key: "size", Label: i18n.T(lang, "size"), Value: formatNumber(p.SizeM2) + " m²"},
		Detail{Key: "location", Label: i18n.T(lang, "location"), Value: p.Location},
		Detail{Key: "type", Label: i18n.T(lang, "type"), Value: translateValue(lang, p.Type)},
	)
	for _, opt := range []struct{ key, value string }{
		{"documentation", p.Documentation},
		{"position", p.Position},
		{"infrastructure", p.Infrastructure},
	} {
		if opt.value == "" {
			continue
		}
		card.Details = append(card.Details, Detail{
			Key:   opt.key,
			Label: i18n.T(lang, opt.key),
			Value: translateValue(lang, opt.value),
		})
	}
	return card
}

// translateValue 属性值按小写 key 翻译，缺失时原样返回
func translateValue(lang i18n.Lang, value string) string {
	if value == "" {
		return ""
	}
	return i18n.T(lang, strings.ToLower(value))
}

func buildVideo(p *model.Property) *Video {
	switch p.VideoType {
	case model.VideoYouTube:
		if id := YouTubeID(p.YouTubeURL); id != "" {
			return &Video{Type: model.VideoYouTube, EmbedURL: "https://www.youtube.com/embed/" + id}
		}
	case model.VideoUpload:
		if p.VideoURL != "" {
			return &Video{Type: model.VideoUpload, URL: p.VideoURL}
		}
	}
	return nil
}

// YouTubeID 从 watch 链接或短链接中提取视频 ID
func YouTubeID(link string) string {
	switch {
	case strings.Contains(link, "youtube.com/watch?v="):
		id := link[strings.Index(link, "v=")+2:]
		if i := strings.IndexByte(id, '&'); i >= 0 {
			id = id[:i]
		}
		return id
	case strings.Contains(link, "youtu.be/"):
		id := link[strings.Index(link, "youtu.be/")+len("youtu.be/"):]
		if i := strings.IndexByte(id, '?'); i >= 0 {
			id = id[:i]
		}
		return id
	}
	return ""
}

// FormatBRL 巴西雷亚尔金额，不带小数，如 "R$\u00a01.250.000"
func FormatBRL(price float64) string {
	v := int64(math.Round(price))
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return sign + "R$\u00a0" + groupThousands(strconv.FormatInt(v, 10), ".")
}

// formatNumber 面积：整数不带小数，否则保留原精度
func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func groupThousands(digits, sep string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteString(sep)
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
