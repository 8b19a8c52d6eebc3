package chunking

// Record is the intermediate unit of extracted text, prior to final
// splitting. Loaders emit one Record per PDF page, per spreadsheet
// render, or per whole file.
type Record struct {
	Text   string `json:"text"`
	Page   *int   `json:"page,omitempty"`
	Source string `json:"source"`
}

// Chunk is the final bounded-size unit produced by the pipeline,
// ready for embedding and vector storage.
type Chunk struct {
	ID       string `json:"id"`
	Content  string `json:"content"`
	Source   string `json:"source"`
	Page     *int   `json:"page,omitempty"`
	ChunkNum int    `json:"chunk_num"`
}

// Metadata returns the chunk metadata as a flat map, the shape stored
// in vector store payloads.
func (c Chunk) Metadata() map[string]any {
	meta := map[string]any{
		"source":    c.Source,
		"chunk_num": c.ChunkNum,
	}
	if c.Page != nil {
		meta["page"] = *c.Page
	}
	return meta
}

// PageOf is a convenience constructor for optional page numbers.
func PageOf(n int) *int {
	return &n
}
