package external

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newOCRServer(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*OCRSpaceRecognizer, func()) {
	srv := httptest.NewServer(http.HandlerFunc(handler))
	rec := NewOCRSpaceRecognizer(OCRSpaceConfig{Endpoint: srv.URL, APIKey: "test-key"}, zap.NewNop())
	return rec, srv.Close
}

func TestOCRSpaceRecognizer_Success(t *testing.T) {
	rec, done := newOCRServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "test-key", r.FormValue("apikey"))
		assert.Equal(t, "eng", r.FormValue("language"))
		assert.Equal(t, "2", r.FormValue("OCREngine"))

		f, _, err := r.FormFile("file")
		require.NoError(t, err)
		data, _ := io.ReadAll(f)
		assert.Equal(t, []byte("image-bytes"), data)

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"ParsedResults":         []map[string]string{{"ParsedText": "67/1 M.3\n002A"}},
			"IsErroredOnProcessing": false,
		})
	})
	defer done()

	text, err := rec.Recognize(context.Background(), []byte("image-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "67/1 M.3\n002A", text)
}

func TestOCRSpaceRecognizer_Errors(t *testing.T) {
	rec, done := newOCRServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"IsErroredOnProcessing": true, "ErrorMessage": ["File too large"]}`))
	})
	defer done()

	_, err := rec.Recognize(context.Background(), []byte("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "File too large")

	_, err = rec.Recognize(context.Background(), nil)
	assert.ErrorIs(t, err, ErrEmptyImage)
}

func TestOCRSpaceRecognizer_HTTPStatus(t *testing.T) {
	rec, done := newOCRServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	defer done()

	_, err := rec.Recognize(context.Background(), []byte("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestFirstErrorMessage(t *testing.T) {
	assert.Equal(t, "a", firstErrorMessage(json.RawMessage(`["a","b"]`)))
	assert.Equal(t, "single", firstErrorMessage(json.RawMessage(`"single"`)))
	assert.Equal(t, "unknown error", firstErrorMessage(nil))
}
