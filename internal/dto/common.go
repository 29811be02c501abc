package dto

type CatalogItemDTO struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

type ShortUserDTO struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}
