package models

// Comment represents a single comment on a community post.
type Comment struct {
	ID      string `json:"id"`
	Author  string `json:"author"`
	Date    string `json:"date"`
	Content string `json:"content"`
}

// Post represents a community board post. Reaction counts are aggregate;
// the per-user reaction choice is tracked separately by the community store.
type Post struct {
	ID             string         `json:"id"`
	Author         string         `json:"author"`
	Date           string         `json:"date"`
	Content        string         `json:"content"`
	ImageURL       string         `json:"imageUrl,omitempty"`
	VideoURL       string         `json:"videoUrl,omitempty"`
	VideoThumbnail string         `json:"videoThumbnail,omitempty"`
	Reactions      map[string]int `json:"reactions"`
	Comments       []Comment      `json:"comments"`
}

// Key returns the post id used for overlay and document addressing.
func (p Post) Key() string { return p.ID }

// Document converts the post to a Firestore document body.
func (p Post) Document() map[string]any {
	reactions := map[string]any{}
	for emoji, count := range p.Reactions {
		reactions[emoji] = count
	}
	comments := make([]any, 0, len(p.Comments))
	for _, c := range p.Comments {
		comments = append(comments, map[string]any{
			"id":      c.ID,
			"author":  c.Author,
			"date":    c.Date,
			"content": c.Content,
		})
	}
	doc := map[string]any{
		"author":    p.Author,
		"date":      p.Date,
		"content":   p.Content,
		"reactions": reactions,
		"comments":  comments,
	}
	if p.ImageURL != "" {
		doc["imageUrl"] = p.ImageURL
	}
	if p.VideoURL != "" {
		doc["videoUrl"] = p.VideoURL
	}
	if p.VideoThumbnail != "" {
		doc["videoThumbnail"] = p.VideoThumbnail
	}
	return doc
}

// PostFromDocument rebuilds a post from a Firestore document. Reaction counts
// arrive as int64 from the wire; zero and negative counts are dropped.
func PostFromDocument(id string, doc map[string]any) Post {
	post := Post{
		ID:             id,
		Author:         docString(doc, "author"),
		Date:           docString(doc, "date"),
		Content:        docString(doc, "content"),
		ImageURL:       docString(doc, "imageUrl"),
		VideoURL:       docString(doc, "videoUrl"),
		VideoThumbnail: docString(doc, "videoThumbnail"),
		Reactions:      map[string]int{},
		Comments:       []Comment{},
	}
	if raw, ok := doc["reactions"].(map[string]any); ok {
		for emoji, v := range raw {
			if n := docInt(v); n > 0 {
				post.Reactions[emoji] = n
			}
		}
	}
	if raw, ok := doc["comments"].([]any); ok {
		for _, entry := range raw {
			c, ok := entry.(map[string]any)
			if !ok {
				continue
			}
			post.Comments = append(post.Comments, Comment{
				ID:      docString(c, "id"),
				Author:  docString(c, "author"),
				Date:    docString(c, "date"),
				Content: docString(c, "content"),
			})
		}
	}
	return post
}

// CreatePostRequest defines the request body for creating a community post.
type CreatePostRequest struct {
	ID             string `json:"id" validate:"required"`
	Author         string `json:"author" validate:"required,min=1,max=80"`
	Date           string `json:"date" validate:"required"`
	Content        string `json:"content" validate:"required,min=1,max=2000"`
	ImageURL       string `json:"imageUrl,omitempty"`
	VideoURL       string `json:"videoUrl,omitempty"`
	VideoThumbnail string `json:"videoThumbnail,omitempty"`
}

// Post converts the request to a domain post.
func (r CreatePostRequest) Post() Post {
	return Post{
		ID:             r.ID,
		Author:         r.Author,
		Date:           r.Date,
		Content:        r.Content,
		ImageURL:       r.ImageURL,
		VideoURL:       r.VideoURL,
		VideoThumbnail: r.VideoThumbnail,
		Reactions:      map[string]int{},
		Comments:       []Comment{},
	}
}

// CreateCommentRequest defines the request body for commenting on a post.
type CreateCommentRequest struct {
	ID      string `json:"id" validate:"required"`
	Author  string `json:"author" validate:"required,min=1,max=80"`
	Date    string `json:"date" validate:"required"`
	Content string `json:"content" validate:"required,min=1,max=500"`
}

// ToggleReactionRequest defines the request body for toggling a reaction.
type ToggleReactionRequest struct {
	Emoji string `json:"emoji" validate:"required"`
}

func docInt(v any) int {
	switch n := v.(type) {
	case int64:
		return int(n)
	case int:
		return n
	case float64:
		return int(n)
	}
	return 0
}
