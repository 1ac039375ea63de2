package export

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/ib-77/memosum/internal/memo"
	"github.com/ib-77/memosum/pkg/memocalc"
)

var ErrInvalidLegacyState = errors.New("invalid legacy state")

//go:embed legacy.schema.json
var legacySchemaJSON []byte

var legacySchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("legacy.schema.json", bytes.NewReader(legacySchemaJSON)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	return compiler.Compile("legacy.schema.json")
})

type legacyState struct {
	Tabs []struct {
		ID            string `json:"id"`
		Title         string `json:"title"`
		MemoText      string `json:"memoText"`
		ExtractedData struct {
			Numbers []float64 `json:"numbers"`
			Sum     float64   `json:"sum"`
		} `json:"extractedData"`
		CreatedAt float64 `json:"createdAt"`
	} `json:"tabs"`
	ActiveTabID *string `json:"activeTabId"`
	Theme       string  `json:"theme"`
}

// legacyID keeps uuids from the web app and derives a stable one from anything else.
func legacyID(id string) uuid.UUID {
	if u, err := uuid.Parse(id); err == nil {
		return u
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("memosum:"+id))
}

// DecodeLegacyState reads the JSON the web app kept in localStorage
// ({tabs, activeTabId} plus an optional theme) after checking it against the bundled
// schema.
func DecodeLegacyState(r io.Reader) (memo.State, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return memo.State{}, fmt.Errorf("read legacy state: %w", err)
	}

	schema, err := legacySchema()
	if err != nil {
		return memo.State{}, fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return memo.State{}, fmt.Errorf("%w: %v", ErrInvalidLegacyState, err)
	}
	if err := schema.Validate(v); err != nil {
		return memo.State{}, fmt.Errorf("%w: %v", ErrInvalidLegacyState, err)
	}

	var legacy legacyState
	if err := json.Unmarshal(data, &legacy); err != nil {
		return memo.State{}, fmt.Errorf("%w: %v", ErrInvalidLegacyState, err)
	}

	state := memo.State{Tabs: make([]memo.Tab, 0, len(legacy.Tabs)), Theme: legacy.Theme}
	now := time.Now().UTC()
	for _, t := range legacy.Tabs {
		created := now
		if t.CreatedAt > 0 {
			created = time.UnixMilli(int64(t.CreatedAt)).UTC()
		}
		nums := t.ExtractedData.Numbers
		if nums == nil {
			nums = []float64{}
		}
		state.Tabs = append(state.Tabs, memo.Tab{
			ID:        legacyID(t.ID),
			Title:     t.Title,
			Text:      t.MemoText,
			Extracted: memocalc.Result{Numbers: nums, Sum: t.ExtractedData.Sum},
			CreatedAt: created,
			UpdatedAt: created,
		})
	}
	if legacy.ActiveTabID != nil {
		state.ActiveID = legacyID(*legacy.ActiveTabID)
	}
	return state, nil
}
