package youtube

// commentThreadList mirrors the subset of commentThreads.list we read.
// Items is a pointer so a missing field can be told apart from an empty one
type commentThreadList struct {
	Items *[]commentThread `json:"items"`
}

type commentThread struct {
	ID      string `json:"id"`
	Snippet struct {
		TopLevelComment struct {
			Snippet commentSnippet `json:"snippet"`
		} `json:"topLevelComment"`
	} `json:"snippet"`
}

type commentSnippet struct {
	AuthorDisplayName string `json:"authorDisplayName"`
	TextDisplay       string `json:"textDisplay"`
}
