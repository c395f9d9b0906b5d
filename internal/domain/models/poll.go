package models

import "time"

type Option struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	VoteCount int64  `json:"voteCount"`
}

type Poll struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Options   []Option  `json:"options"`
	AuthorID  string    `json:"authorId"`
	CreatedAt time.Time `json:"createdAt"`
}

// TotalVotes sums the tallies of all options.
func (p Poll) TotalVotes() int64 {
	var total int64
	for _, o := range p.Options {
		total += o.VoteCount
	}
	return total
}

// Vote is a ledger entry proving that a user voted in a poll.
type Vote struct {
	ID        string
	UserID    string
	PollID    string
	CreatedAt time.Time
}
