// Package models defines the domain types shared by the rendering pipeline.
package models

// Note is a single note as stored by the host application.
// Times are milliseconds since the Unix epoch, as Joplin stores them.
type Note struct {
	ID          string `json:"id"`
	ParentID    string `json:"parent_id"`
	Title       string `json:"title"`
	Body        string `json:"body"`
	CreatedTime int64  `json:"created_time"`
	UpdatedTime int64  `json:"updated_time"`
}

// ResourceMeta describes an attachment without its content.
type ResourceMeta struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Mime          string `json:"mime"`
	Filename      string `json:"filename"`
	FileExtension string `json:"file_extension"`
	Size          int64  `json:"size"`
	CreatedTime   int64  `json:"created_time"`
	UpdatedTime   int64  `json:"updated_time"`
}

// DefaultExtension is used when a resource carries no file extension.
const DefaultExtension = "bin"

// ResourceBlob is an attachment fetched for a single reference.
type ResourceBlob struct {
	Mime          string
	FileExtension string
	Bytes         []byte
}

// Extension returns the file extension, falling back to DefaultExtension.
func (b ResourceBlob) Extension() string {
	if b.FileExtension == "" {
		return DefaultExtension
	}
	return b.FileExtension
}

// AttachmentReference is one `[label](:/id)` span found in a note body.
type AttachmentReference struct {
	Match      string // exact matched text, replaced verbatim
	Label      string // bracket text without "!" and brackets
	ResourceID string
	Embed      bool // leading "!"
}

// RenderedFragment is the output of a markdown compiler.
type RenderedFragment struct {
	HTML           string
	StyleFragments []string
	PluginAssets   []string
}
