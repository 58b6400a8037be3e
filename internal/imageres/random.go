package imageres

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"strconv"
	"strings"
)

// RandomCount is the number of images the listing endpoint serves (ids 1..30).
const RandomCount = 30

// RemoteImage is one entry of the image listing endpoint.
type RemoteImage struct {
	ID   int    `json:"id"`
	URL  string `json:"url"`
	Name string `json:"name"`
}

func randIntn(n int) int { return rand.IntN(n) }

// RandomIndex returns a listing id in [1, RandomCount].
func (r *Resolver) RandomIndex() int {
	return r.intn(RandomCount) + 1
}

// RandomImage asks the listing endpoint for one random image. One request,
// no retry.
func (r *Resolver) RandomImage(ctx context.Context) (RemoteImage, error) {
	return r.ImageByIndex(ctx, r.RandomIndex())
}

// ImageByIndex fetches listing entry n.
func (r *Resolver) ImageByIndex(ctx context.Context, n int) (RemoteImage, error) {
	target := r.endpoint + "/" + strconv.Itoa(n)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return RemoteImage{}, fmt.Errorf("build random image request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return RemoteImage{}, fmt.Errorf("fetch random image: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return RemoteImage{}, fmt.Errorf("%w: status %d from %s", ErrBadResponse, resp.StatusCode, target)
	}

	var out RemoteImage
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&out); err != nil {
		return RemoteImage{}, fmt.Errorf("decode random image: %w", err)
	}
	if !Fetchable(out.URL) {
		return RemoteImage{}, fmt.Errorf("%w: random image url %q", ErrBadResponse, strings.TrimSpace(out.URL))
	}
	r.logger.DebugContext(ctx, "Random image picked", "index", n, "id", out.ID, "name", out.Name)
	return out, nil
}
