package models

import "time"

// PullRequest is the pull request a github run reports on
type PullRequest struct {
	Number  int
	Title   string
	BaseSHA string
	HeadSHA string
	BaseRef string
	HeadRef string
	State   string
	Merged  bool
}

// Comment is a pull request issue comment
type Comment struct {
	ID        int64
	Body      string
	User      string
	HTMLURL   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
