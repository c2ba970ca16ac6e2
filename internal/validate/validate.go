package validate

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"sync"

	"github.com/rotisserie/eris"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/MalithGihan/pdftext-service/pkg/types"
)

const schemaURL = "file://schema/extraction_report.schema.json"

//go:embed schema/extraction_report.schema.json
var schemaJSON []byte

var (
	once    sync.Once
	schema  *jsonschema.Schema
	loadErr error
)

func load() {
	c := jsonschema.NewCompiler()
	if err := c.AddResource(schemaURL, bytes.NewReader(schemaJSON)); err != nil {
		loadErr = err
		return
	}
	s, err := c.Compile(schemaURL)
	if err != nil {
		loadErr = err
		return
	}
	schema = s
}

// Report checks r against the response contract: the JSON schema plus the
// ordering rules it cannot express.
func Report(r types.ExtractionReport) error {
	once.Do(load)
	if loadErr != nil {
		return eris.Wrap(loadErr, "load report schema")
	}
	b, err := json.Marshal(r)
	if err != nil {
		return eris.Wrap(err, "marshal report")
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return eris.Wrap(err, "unmarshal report")
	}
	if err := schema.Validate(v); err != nil {
		return eris.Wrap(err, "report schema")
	}
	if r.TotalPages != len(r.Data) {
		return eris.Errorf("total_pages %d does not match %d results", r.TotalPages, len(r.Data))
	}
	for i, p := range r.Data {
		if p.Page != i+1 {
			return eris.Errorf("data[%d] has page %d, want %d", i, p.Page, i+1)
		}
	}
	return nil
}
