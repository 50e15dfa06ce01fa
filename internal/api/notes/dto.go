package notes

// ---------- requests

type NoteInput struct {
	Title    string  `json:"title" validate:"max=255"`
	Content  string  `json:"content" validate:"max=200000"`
	FolderID *string `json:"folderId" validate:"omitempty,uuid"`
	Pinned   bool    `json:"pinned"`
}

type UpdateNoteRequest struct {
	Title    *string `json:"title" validate:"omitempty,max=255"`
	Content  *string `json:"content" validate:"omitempty,max=200000"`
	FolderID *string `json:"folderId" validate:"omitempty,uuid"`
	// ClearFolder moves the note back to the root.
	ClearFolder bool  `json:"clearFolder"`
	Pinned      *bool `json:"pinned"`
}

type FolderInput struct {
	Name      string `json:"name" validate:"required,max=120"`
	SortIndex int    `json:"sortIndex" validate:"min=0"`
}
