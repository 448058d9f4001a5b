package dto

type CreateObjectRequestDTO struct {
	Title       string `form:"title"`
	Description string `form:"description"`
}

type ListObjectsQueryDTO struct {
	Search string `form:"search"`
}

type DeleteObjectResponseDTO struct {
	ID string `json:"id"`
}

type HealthResponseDTO struct {
	Status  string `json:"status"`
	Clients int    `json:"clients"`
}
