package store

import "github.com/clsllc/landscaping-site/backend/internal/models"

// Seed content shown before any client data exists, and pushed to the cloud
// by the seed operations.

var defaultProjects = []models.GalleryItem{
	{
		ID:       "project-new-1",
		Category: models.CategoryHardscape,
		Title:    "Modern Stone Patio",
		ImageURL: "https://res.cloudinary.com/clsllc/image/upload/v1765419813/Gemini_Generated_Image_e3lqo0e3lqo0e3lq_mq0dnz.png",
	},
	{
		ID:       "project-new-2",
		Category: models.CategoryPools,
		Title:    "Luxury Backyard Retreat",
		ImageURL: "https://res.cloudinary.com/clsllc/image/upload/v1764997675/Stonehenge2007_07_30_fstn2v.jpg",
	},
	{
		ID:       "project-new-3",
		Category: models.CategoryHardscape,
		Title:    "Custom Retaining Wall",
		ImageURL: "https://res.cloudinary.com/clsllc/image/upload/v1765012931/Y19jcm9wLGFyXzQ6Mw_w7fwlp.jpg",
	},
	{
		ID:       "project-new-4",
		Category: models.CategoryDecks,
		Title:    "Premium Cedar Deck",
		ImageURL: "https://res.cloudinary.com/clsllc/image/upload/v1765009374/Screenshot_20220503-164338_Photos_dqy3pf.jpg",
	},
}

var defaultPosts = []models.Post{
	{
		ID:      "default-1",
		Author:  "Tyler Dennison",
		Date:    "10/24/2023",
		Content: "Welcome to the new Creative Landscaping Solutions community board! 🌿\n\nWe built this space for our clients to share their backyard transformations, ask questions, and get inspired. Feel free to post photos of your latest projects!",
		ImageURL: "https://res.cloudinary.com/clsllc/image/upload/v1766382368/Tyler_Dennison_pnrgof_uinic3.jpg",
		Reactions: map[string]int{"❤️": 12, "🎉": 5},
		Comments: []models.Comment{
			{
				ID:      "c1",
				Author:  "Sarah Jenkins",
				Date:    "10/25/2023",
				Content: "This is such a great idea, Tyler! Can't wait to see everyone's photos.",
			},
		},
	},
}
