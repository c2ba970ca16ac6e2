package types

// BlankPage stands in for a page with no extractable content.
const BlankPage = "[Blank Page]"

type PageResult struct {
	Page int    `json:"page"`
	Text string `json:"text"`
}

// ExtractionReport is the success response; Data is ordered 1..TotalPages.
type ExtractionReport struct {
	Filename   string       `json:"filename"`
	TotalPages int          `json:"total_pages"`
	Data       []PageResult `json:"data"`
}

type ErrorResponse struct {
	Detail string `json:"detail"`
}
