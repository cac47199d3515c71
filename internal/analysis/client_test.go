package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL, 5*time.Second, zerolog.Nop())
}

func TestAnalyzeText_Success(t *testing.T) {
	var got analyzeRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/analyze", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"label":"Positive","emoji":"😊","scores":{"pos":0.6,"neu":0.4,"neg":0,"compound":0.86},"keywords":["love","product"],"lang":"en"}`))
	})

	res, err := client.AnalyzeText(context.Background(), "I love this product", "")
	require.NoError(t, err)
	require.Equal(t, "I love this product", got.Text)
	require.Equal(t, DefaultModel, got.Model, "empty model falls back to vader")
	require.Equal(t, Positive, res.Label)
	require.Equal(t, "😊", res.Emoji)
	require.InDelta(t, 0.86, res.Scores.Compound, 1e-9)
	require.Equal(t, []string{"love", "product"}, res.Keywords)
	require.Equal(t, "en", res.Lang)
}

func TestAnalyzeText_MissingScoresDefaultToZero(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"label":"Neutral","emoji":"😐"}`))
	})

	res, err := client.AnalyzeText(context.Background(), "meh", "vader")
	require.NoError(t, err)
	require.Equal(t, Scores{}, res.Scores)
}

func TestAnalyzeText_EmptyBodyIsEmptyResponse(t *testing.T) {
	for _, body := range []string{"", "   \n"} {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(body))
		})

		res, err := client.AnalyzeText(context.Background(), "hello", "vader")
		require.Nil(t, res, "never a parsed zero-value result")
		var empty *EmptyResponseError
		require.ErrorAs(t, err, &empty)
		require.Equal(t, KindEmptyResponse, Kind(err))
	}
}

func TestAnalyzeText_HTTPErrorCarriesStatusAndBody(t *testing.T) {
	cases := []struct {
		status int
		body   string
	}{
		{http.StatusBadRequest, `{"error":"no text"}`},
		{http.StatusNotFound, ""},
		{http.StatusInternalServerError, "boom"},
		{http.StatusServiceUnavailable, ""},
	}
	for _, tc := range cases {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
			w.Write([]byte(tc.body))
		})

		_, err := client.AnalyzeText(context.Background(), "hello", "vader")
		var httpErr *HTTPError
		require.ErrorAs(t, err, &httpErr)
		require.Equal(t, tc.status, httpErr.Status)
		require.Equal(t, tc.body, httpErr.Body)
		require.Equal(t, http.StatusText(tc.status), httpErr.StatusText)
		require.Equal(t, tc.status, StatusCode(err))
		require.Equal(t, KindHTTP, Kind(err))
	}
}

func TestHTTPError_Message(t *testing.T) {
	err := &HTTPError{Status: 404, StatusText: "Not Found"}
	require.Equal(t, "Error: 404 Not Found - no details", err.Error())

	err.Body = "missing"
	require.Equal(t, "Error: 404 Not Found - missing", err.Error())
}

func TestAnalyzeText_MalformedJSON(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>oops</html>`))
	})

	_, err := client.AnalyzeText(context.Background(), "hello", "vader")
	var mal *MalformedResponseError
	require.ErrorAs(t, err, &mal)
	require.Equal(t, "<html>oops</html>", mal.Body)
	require.Equal(t, KindMalformedResponse, Kind(err))
}

func TestAnalyzeText_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewClient(url, time.Second, zerolog.Nop())
	_, err := client.AnalyzeText(context.Background(), "hello", "vader")
	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
	require.NotEmpty(t, netErr.Message)
	require.True(t, strings.HasPrefix(err.Error(), "Network or server error: "))
	require.Equal(t, KindNetwork, Kind(err))
}

func TestAnalyzeFile_SendsMultipartAndModelQuery(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/analyze_file", r.URL.Path)
		require.Equal(t, "roberta", r.URL.Query().Get("model"))
		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		data, _ := io.ReadAll(f)
		require.Equal(t, "notes.txt", hdr.Filename)
		require.Equal(t, "what a day", string(data))
		w.Write([]byte(`{"label":"Neutral","emoji":"😐","scores":{"pos":0,"neu":1,"neg":0,"compound":0},"meta":{"chars":10}}`))
	})

	res, err := client.AnalyzeFile(context.Background(), "notes.txt", strings.NewReader("what a day"), "roberta")
	require.NoError(t, err)
	require.NotNil(t, res.Meta)
	require.Equal(t, 10, res.Meta.Chars)
}

func TestAnalyzeCSV_ContentNegotiation(t *testing.T) {
	t.Run("json preview", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "vader", r.URL.Query().Get("model"))
			require.Empty(t, r.URL.Query().Get("format"))
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.Write([]byte(`{"count":120,"items":[{"text":"a"},{"text":"b"}]}`))
		})
		batch, err := client.AnalyzeCSV(context.Background(), "rows.csv", []byte("text\na\nb\n"), "")
		require.NoError(t, err)
		require.NotNil(t, batch.Preview)
		require.Nil(t, batch.CSV)
		require.Equal(t, 120, batch.Preview.Count)
		require.Len(t, batch.Preview.Items, 2)
	})

	t.Run("csv body", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/csv")
			w.Write([]byte("text,label\na,Positive\n"))
		})
		batch, err := client.AnalyzeCSV(context.Background(), "rows.csv", []byte("text\na\n"), "vader")
		require.NoError(t, err)
		require.Nil(t, batch.Preview)
		require.Equal(t, "text,label\na,Positive\n", string(batch.CSV))
	})

	t.Run("unexpected type", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			w.Write([]byte("<p>hi</p>"))
		})
		_, err := client.AnalyzeCSV(context.Background(), "rows.csv", []byte("x"), "vader")
		var ctErr *UnexpectedContentTypeError
		require.ErrorAs(t, err, &ctErr)
		require.Equal(t, "text/html", ctErr.ContentType)
		require.Equal(t, KindUnexpectedContentType, Kind(err))
	})

	t.Run("http error wins over content type", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			w.WriteHeader(http.StatusRequestEntityTooLarge)
		})
		_, err := client.AnalyzeCSV(context.Background(), "rows.csv", []byte("x"), "vader")
		require.Equal(t, KindHTTP, Kind(err))
	})
}

func TestDownloadCSV_RequestsCSVFormat(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "csv", r.URL.Query().Get("format"))
		require.Equal(t, "vader", r.URL.Query().Get("model"))
		w.Header().Set("Content-Type", "text/csv")
		w.Write([]byte("a,b\n"))
	})
	data, err := client.DownloadCSV(context.Background(), "rows.csv", []byte("x"), "vader")
	require.NoError(t, err)
	require.Equal(t, "a,b\n", string(data))
}

func TestChat(t *testing.T) {
	var got chatRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"reply":"Let's take a breath.","tone":"coaching","sentiment":{"emoji":"🙂","scores":{"pos":0.3,"neu":0.7,"neg":0,"compound":0.2}},"suggestions":["Do breathing"]}`))
	})

	reply, err := client.Chat(context.Background(), "I'm stressed", "coaching")
	require.NoError(t, err)
	require.Equal(t, chatRequest{Message: "I'm stressed", Tone: "coaching"}, got)
	require.Equal(t, "Let's take a breath.", reply.Reply)
	require.Equal(t, "coaching", reply.Tone)
	require.Equal(t, "🙂", reply.Sentiment.Emoji)
	require.NotNil(t, reply.Sentiment.Scores)
	require.Equal(t, []string{"Do breathing"}, reply.Suggestions)
}

func TestHistory(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "10", r.URL.Query().Get("limit"))
		w.Write([]byte(`{"items":[{"created_at":"2024-01-01","source":"text","label":"Positive","pos":0.5,"neu":0.5,"neg":0,"compound":0.4,"text_snippet":"ok"}]}`))
	})

	rows, err := client.History(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "ok", rows[0].TextSnippet)
	require.InDelta(t, 0.4, rows[0].Compound, 1e-9)
}

func TestHistory_MissingItemsIsEmpty(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})
	rows, err := client.History(context.Background(), 5)
	require.NoError(t, err)
	require.NotNil(t, rows)
	require.Empty(t, rows)
}

func TestSaveSettings(t *testing.T) {
	t.Run("form", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseMultipartForm(1<<20))
			require.Equal(t, "rose", r.FormValue("accent_theme"))
			w.WriteHeader(http.StatusNoContent)
		})
		require.NoError(t, client.SaveSettings(context.Background(), map[string]string{"accent_theme": "rose"}, false))
	})

	t.Run("json", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			require.Equal(t, "green", body["accent_theme"])
			w.WriteHeader(http.StatusOK)
		})
		require.NoError(t, client.SaveSettings(context.Background(), map[string]string{"accent_theme": "green"}, true))
	})

	t.Run("unauthorized", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})
		err := client.SaveSettings(context.Background(), map[string]string{"accent_theme": "green"}, true)
		require.Equal(t, KindHTTP, Kind(err))
	})
}

func TestExportPDF(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("%PDF-1.4"))
	})
	data, err := client.ExportPDF(context.Background(), "report me", "vader")
	require.NoError(t, err)
	require.Equal(t, "%PDF-1.4", string(data))
}

func TestPageContext(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<!doctype html><html lang="en" data-server-accent="violet" data-auth="1"><body></body></html>`))
	})

	pc, err := client.PageContext(context.Background())
	require.NoError(t, err)
	require.Equal(t, "violet", pc.ServerAccent)
	require.True(t, pc.Authenticated)
}

func TestParsePageContext_Defaults(t *testing.T) {
	pc, err := ParsePageContext([]byte(`<html><head></head></html>`))
	require.NoError(t, err)
	require.Equal(t, "blue", pc.ServerAccent)
	require.False(t, pc.Authenticated)
}

func TestKind_UnknownErrorIsNetwork(t *testing.T) {
	require.Equal(t, KindNone, Kind(nil))
	require.Equal(t, KindNetwork, Kind(errors.New("context deadline exceeded")))
}
