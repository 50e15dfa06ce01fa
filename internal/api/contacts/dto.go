package contacts

type ContactInput struct {
	Name     string  `json:"name" validate:"required,max=200"`
	Email    string  `json:"email" validate:"omitempty,email,max=320"`
	Phone    string  `json:"phone" validate:"max=50"`
	Company  string  `json:"company" validate:"max=200"`
	Notes    string  `json:"notes" validate:"max=20000"`
	FolderID *string `json:"folderId" validate:"omitempty,uuid"`
}

type ContactFolderInput struct {
	Name string `json:"name" validate:"required,max=120"`
}
