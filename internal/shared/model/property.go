package model

import "time"

// PropertyStatus 展示站条目状态
type PropertyStatus string

const (
	PropertyActive   PropertyStatus = "active"
	PropertyInactive PropertyStatus = "inactive"
)

// VideoType 视频来源
type VideoType string

const (
	VideoYouTube VideoType = "youtube"
	VideoUpload  VideoType = "upload"
)

// Property 地产展示站条目（文档库）
type Property struct {
	ID             string         `json:"id" bson:"_id"`
	TitlePT        string         `json:"title_pt,omitempty" bson:"title_pt,omitempty"`
	TitleDE        string         `json:"title_de,omitempty" bson:"title_de,omitempty"`
	TitleEN        string         `json:"title_en,omitempty" bson:"title_en,omitempty"`
	DescriptionPT  string         `json:"description_pt,omitempty" bson:"description_pt,omitempty"`
	DescriptionDE  string         `json:"description_de,omitempty" bson:"description_de,omitempty"`
	DescriptionEN  string         `json:"description_en,omitempty" bson:"description_en,omitempty"`
	SizeM2         float64        `json:"size_m2" bson:"size_m2"`
	Location       string         `json:"location" bson:"location"`
	Type           string         `json:"type" bson:"type"`
	Documentation  string         `json:"documentation,omitempty" bson:"documentation,omitempty"`
	Position       string         `json:"position,omitempty" bson:"position,omitempty"`
	Infrastructure string         `json:"infrastructure,omitempty" bson:"infrastructure,omitempty"`
	Price          float64        `json:"price" bson:"price"`
	Status         PropertyStatus `json:"status" bson:"status"`
	VideoType      VideoType      `json:"video_type,omitempty" bson:"video_type,omitempty"`
	YouTubeURL     string         `json:"youtube_url,omitempty" bson:"youtube_url,omitempty"`
	VideoURL       string         `json:"video_url,omitempty" bson:"video_url,omitempty"`
	CreatedAt      time.Time      `json:"created_at" bson:"created_at"`
}

// Title 按语言取标题：lang → pt → en → de → "Property"
func (p *Property) Title(lang string) string {
	for _, t := range []string{p.titleFor(lang), p.TitlePT, p.TitleEN, p.TitleDE} {
		if t != "" {
			return t
		}
	}
	return "Property"
}

// Description 按语言取描述：lang → pt → ""
func (p *Property) Description(lang string) string {
	switch lang {
	case "de":
		if p.DescriptionDE != "" {
			return p.DescriptionDE
		}
	case "en":
		if p.DescriptionEN != "" {
			return p.DescriptionEN
		}
	}
	return p.DescriptionPT
}

func (p *Property) titleFor(lang string) string {
	switch lang {
	case "pt":
		return p.TitlePT
	case "de":
		return p.TitleDE
	case "en":
		return p.TitleEN
	}
	return ""
}
