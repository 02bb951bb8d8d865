package catalog

import "github.com/vidcraft/backend/internal/models"

const unsplash = "https://images.unsplash.com/"

func thumb(photo string) string {
	return unsplash + photo + "?ixlib=rb-4.0.3&auto=format&fit=crop&w=400&h=225"
}

// Defaults returns the built-in template catalog seeded into every new store.
func Defaults() []models.NewTemplate {
	return []models.NewTemplate{
		{Name: "Business", Description: "Professional business presentation style", ThumbnailURL: thumb("photo-1560472354-b33ff0c44a43"), Category: "corporate", IsActive: 1},
		{Name: "Technology", Description: "Modern tech-focused design", ThumbnailURL: thumb("photo-1551650975-87deedd944c3"), Category: "tech", IsActive: 1},
		{Name: "Creative", Description: "Colorful and engaging creative style", ThumbnailURL: thumb("photo-1541701494587-cb58502866ab"), Category: "creative", IsActive: 1},
		{Name: "Minimal", Description: "Clean and minimalist design", ThumbnailURL: thumb("photo-1586281380349-632531db7ed4"), Category: "minimal", IsActive: 1},
		{Name: "YouTube Intro", Description: "Perfect for YouTube channel intros", ThumbnailURL: thumb("photo-1611162617474-5b21e879e113"), Category: "youtube", IsActive: 1},
		{Name: "YouTube Tutorial", Description: "Educational content for tutorials", ThumbnailURL: thumb("photo-1516321318423-f06f85e504b3"), Category: "youtube", IsActive: 1},
		{Name: "Social Media", Description: "Optimized for social platforms", ThumbnailURL: thumb("photo-1611224923853-80b023f02d71"), Category: "social", IsActive: 1},
		{Name: "Product Demo", Description: "Showcase your products effectively", ThumbnailURL: thumb("photo-1560472355-536de3962603"), Category: "marketing", IsActive: 1},
		{Name: "Explainer", Description: "Perfect for explaining concepts", ThumbnailURL: thumb("photo-1552664730-d307ca884978"), Category: "educational", IsActive: 1},
		{Name: "Artistic", Description: "Creative artistic video style", ThumbnailURL: thumb("photo-1536431311719-398b6704d4cc"), Category: "creative", IsActive: 1},
		{Name: "Gaming", Description: "Dynamic gaming content style", ThumbnailURL: thumb("photo-1542751371-adc38448a05e"), Category: "gaming", IsActive: 1},
		{Name: "News Report", Description: "Professional news presentation", ThumbnailURL: thumb("photo-1504711434969-e33886168f5c"), Category: "news", IsActive: 1},
	}
}
