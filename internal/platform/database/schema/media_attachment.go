package schema

// MediaAttachmentTable represents the 'media.attachment' table
type MediaAttachmentTable struct {
	Table     string
	ID        string
	File      string
	MimeType  string
	Metadata  string
	CreatedAt string
	UpdatedAt string
}

// MediaAttachment is the schema definition for media.attachment
var MediaAttachment = MediaAttachmentTable{
	Table:     "media.attachment",
	ID:        "id",
	File:      "file",
	MimeType:  "mimetype",
	Metadata:  "metadata",
	CreatedAt: "createdat",
	UpdatedAt: "updatedat",
}

func (t MediaAttachmentTable) Columns() []string {
	return []string{t.ID, t.File, t.MimeType, t.Metadata, t.CreatedAt, t.UpdatedAt}
}
