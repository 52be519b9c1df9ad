package browser

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"github.com/matheus3301/waharvest/internal/media"
)

// blobScript reads a blob: URL inside the page and resolves to a data: URL.
// blob: URLs are only valid in the document that created them.
const blobScript = `(async (u) => {
  const r = await fetch(u);
  if (!r.ok) throw new Error("status " + r.status);
  const b = await r.blob();
  return await new Promise((resolve, reject) => {
    const f = new FileReader();
    f.onload = () => resolve(f.result);
    f.onerror = () => reject(f.error);
    f.readAsDataURL(b);
  });
})(%s)`

// BlobSource resolves blob: locators through the live page.
type BlobSource struct {
	Session *Session
}

// Open fetches the blob in the page and returns its bytes.
func (b BlobSource) Open(ctx context.Context, locator string) (io.ReadCloser, error) {
	expr, err := blobExpression(locator)
	if err != nil {
		return nil, err
	}
	var dataURL string
	err = b.Session.run(ctx, 0, chromedp.Evaluate(expr, &dataURL, func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
		return p.WithAwaitPromise(true)
	}))
	if err != nil {
		return nil, fmt.Errorf("read blob %s: %w", locator, err)
	}
	data, err := media.DecodeDataURL(dataURL)
	if err != nil {
		return nil, fmt.Errorf("read blob %s: %w", locator, err)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func blobExpression(locator string) (string, error) {
	lit, err := json.Marshal(locator)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(blobScript, lit), nil
}

// Sources returns the default media sources plus blob: resolution through s.
func Sources(base media.Sources, s *Session) media.Sources {
	out := make(media.Sources, len(base)+1)
	for k, v := range base {
		out[k] = v
	}
	out["blob"] = BlobSource{Session: s}
	return out
}
