package stories

type StoryStatus string

const (
	StatusPending   StoryStatus = "pending"
	StatusPublished StoryStatus = "published"
	StatusRejected  StoryStatus = "rejected"
)

type Category string

const (
	CategoryTraditions Category = "traditions"
	CategoryFood       Category = "food"
	CategoryPlaces     Category = "places"
	CategoryPeople     Category = "people"
	CategoryWork       Category = "work"
	CategoryOther      Category = "other"
)
