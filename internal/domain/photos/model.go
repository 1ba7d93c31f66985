package photos

import "time"

type PhotoStatus string

const (
	StatusVisible PhotoStatus = "visible"
	StatusHidden  PhotoStatus = "hidden"
)

// Photo es una entrada del archivo de "fotos perdidas": imágenes antiguas
// de la región aportadas por la comunidad. El archivo en sí vive en el
// object storage gestionado; acá solo se guarda la referencia.
type Photo struct {
	ID              string
	SubmitterUserID string

	Caption  string
	Era      string // texto libre: "años 50", "c. 1920"
	Location string
	ImageURL string

	Featured bool
	Status   PhotoStatus

	CreatedAt time.Time
	UpdatedAt time.Time
}
