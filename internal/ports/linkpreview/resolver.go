package linkpreview

import "context"

// Preview es la metadata OpenGraph-ish de un link externo.
type Preview struct {
	URL         string
	Title       string
	Description string
	ImageURL    string
	SiteName    string
}

type Resolver interface {
	Resolve(ctx context.Context, url string) (Preview, error)
}
