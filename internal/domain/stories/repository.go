package stories

import "context"

type Repository interface {
	Create(ctx context.Context, s Story) error
	Update(ctx context.Context, s Story) error
	GetByID(ctx context.Context, id string) (Story, error)

	// List filtra por status/categoría/texto, orden: publicados por
	// PublishedAt desc, el resto por CreatedAt desc.
	List(ctx context.Context, filter ListFilter) ([]Story, error)
	ListByAuthor(ctx context.Context, authorUserID string) ([]Story, error)

	// Likes: a lo sumo uno por (story, user). Like repetido no es error.
	Like(ctx context.Context, storyID, userID string) error
	Unlike(ctx context.Context, storyID, userID string) error
	LikeCount(ctx context.Context, storyID string) (int, error)

	AddComment(ctx context.Context, c Comment) error
	ListComments(ctx context.Context, storyID string) ([]Comment, error)
	GetComment(ctx context.Context, commentID string) (Comment, error)
	RemoveComment(ctx context.Context, commentID string) error
}

type ListFilter struct {
	Status   StoryStatus
	Category Category
	Query    string
	Limit    int
}
