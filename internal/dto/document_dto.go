package dto

// DocumentResponse is returned after a successful document upload.
type DocumentResponse struct {
	Ref       string `json:"ref"`
	FileName  string `json:"file_name"`
	MimeType  string `json:"mime_type"`
	SizeBytes int64  `json:"size_bytes"`
	Checksum  string `json:"checksum"`
}

// DocumentContent carries the raw payload of a fetched document.
type DocumentContent struct {
	Bytes       []byte
	ContentType string
	FileName    string
}
