package model

// swagger:model ForumThread
type ForumThread struct {
	BaseModel
	AuthorID uint         `gorm:"index;not null" json:"authorId"`
	Author   *User        `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	CourseID *uint        `gorm:"index" json:"courseId,omitempty"`
	Title    string       `gorm:"size:200;not null" json:"title"`
	Content  string       `gorm:"type:text;not null" json:"content"`
	Category string       `gorm:"size:50;index" json:"category"`
	Resolved bool         `json:"resolved"`
	Closed   bool         `json:"closed"`
	Views    int          `gorm:"default:0" json:"views"`
	Replies  []ForumReply `gorm:"foreignKey:ThreadID" json:"replies,omitempty"`
}

func (ForumThread) TableName() string {
	return "forum_threads"
}

// swagger:model ForumReply
type ForumReply struct {
	BaseModel
	ThreadID   uint   `gorm:"index;not null" json:"threadId"`
	AuthorID   uint   `gorm:"index;not null" json:"authorId"`
	Author     *User  `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Content    string `gorm:"type:text;not null" json:"content"`
	IsSolution bool   `json:"isSolution"`
	Votes      int    `gorm:"default:0" json:"votes"`
}

func (ForumReply) TableName() string {
	return "forum_replies"
}

type VoteType string

const (
	VoteUp   VoteType = "up"
	VoteDown VoteType = "down"
)

// Delta is the effect this vote has on a reply's tally.
func (v VoteType) Delta() int {
	if v == VoteDown {
		return -1
	}
	return 1
}

type ReplyVote struct {
	Timestamps
	ReplyID uint     `gorm:"not null;uniqueIndex:idx_reply_vote" json:"replyId"`
	UserID  uint     `gorm:"not null;uniqueIndex:idx_reply_vote" json:"userId"`
	Type    VoteType `gorm:"size:4;not null" json:"type"`
}

func (ReplyVote) TableName() string {
	return "reply_votes"
}
