package assets

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/dgavriloff/go-portal/internal/httpc"
	"github.com/dgavriloff/go-portal/pkg/render"
)

// maxModelBytes bounds how much of a model document is read.
const maxModelBytes = 8 << 20

// Load fetches a model from an http(s) URL or a local path and converts
// it to a mesh.
func Load(ctx context.Context, ref string) (*render.Mesh, error) {
	var (
		data []byte
		err  error
	)
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		data, err = fetch(ctx, ref)
	} else {
		data, err = os.ReadFile(ref)
	}
	if err != nil {
		return nil, fmt.Errorf("load model %s: %w", ref, err)
	}

	var model Model
	if err := json.Unmarshal(data, &model); err != nil {
		return nil, fmt.Errorf("parse model %s: %w", ref, err)
	}

	mesh, err := model.Mesh()
	if err != nil {
		return nil, fmt.Errorf("model %s: %w", ref, err)
	}
	return mesh, nil
}

func fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxModelBytes))
}
