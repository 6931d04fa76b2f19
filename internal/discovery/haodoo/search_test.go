package haodoo

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/transform"
)

func testClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	return New(Config{
		BaseURL:   baseURL,
		Referrer:  baseURL + "/?M=hd",
		UserAgent: "test-agent",
		ResultCap: 5,
		RPS:       1000, // Don't throttle tests.
	}, slog.New(slog.DiscardHandler))
}

// big5 encodes a UTF-8 page the way the upstream serves it.
func big5(t *testing.T, page string) []byte {
	t.Helper()
	encoded, _, err := transform.Bytes(traditionalchinese.Big5.NewEncoder(), []byte(page))
	require.NoError(t, err)
	return encoded
}

func TestSearch_ExtractsResults(t *testing.T) {
	page := `<html><body>
		<a href="?M=book&P=B1234">《紅樓夢》曹雪芹</a>
		<a href="?M=book&P=C88">《老殘遊記》劉鶚</a>
	</body></html>`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(big5(t, page))
	}))
	defer server.Close()

	client := testClient(t, server.URL)
	defer client.Close()

	results, err := client.Search(context.Background(), "紅樓")
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "B1234", results[0].ID)
	assert.Equal(t, "紅樓夢", results[0].Title)
	assert.Equal(t, "曹雪芹", results[0].Author)
	assert.Equal(t, server.URL+"/?M=d&P=B1234.epub", results[0].DownloadURL)

	assert.Equal(t, "C88", results[1].ID)
	assert.Equal(t, "老殘遊記", results[1].Title)
	assert.Equal(t, "劉鶚", results[1].Author)
}

func TestSearch_ExcludesAudioVariants(t *testing.T) {
	page := `
		<a href="?M=book&P=B100">《書一》某人</a>
		<a href="?M=book&P=A100">《書一》某人 (有聲書)</a>
		<a href="?M=book&P=B200">《書二》某人</a>`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(big5(t, page))
	}))
	defer server.Close()

	client := testClient(t, server.URL)
	defer client.Close()

	results, err := client.Search(context.Background(), "書")
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.NotEqual(t, "A100", r.ID)
	}
}

func TestSearch_Deduplicates(t *testing.T) {
	page := `
		<a href="?M=book&P=B100">《重複的書》某人</a>
		<a href="?M=book&P=B100">《重複的書》某人</a>`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(big5(t, page))
	}))
	defer server.Close()

	client := testClient(t, server.URL)
	defer client.Close()

	results, err := client.Search(context.Background(), "重複")
	require.NoError(t, err)
	require.Len(t, results, 1)
}

func TestSearch_CapsResults(t *testing.T) {
	page := `
		<a href="?M=book&P=B1">《一》甲</a>
		<a href="?M=book&P=B2">《二》乙</a>
		<a href="?M=book&P=B3">《三》丙</a>
		<a href="?M=book&P=B4">《四》丁</a>
		<a href="?M=book&P=B5">《五》戊</a>
		<a href="?M=book&P=B6">《六》己</a>
		<a href="?M=book&P=B7">《七》庚</a>`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(big5(t, page))
	}))
	defer server.Close()

	client := testClient(t, server.URL)
	defer client.Close()

	results, err := client.Search(context.Background(), "數")
	require.NoError(t, err)
	assert.Len(t, results, 5)
}

func TestSearch_NoMatches(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(big5(t, "<html><body>找不到</body></html>"))
	}))
	defer server.Close()

	client := testClient(t, server.URL)
	defer client.Close()

	// Zero matches is an ordinary outcome, never an error and never
	// padded with fabricated entries.
	results, err := client.Search(context.Background(), "不存在的書")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearch_EmptyKeyword(t *testing.T) {
	client := testClient(t, "http://unused.invalid")
	defer client.Close()

	_, err := client.Search(context.Background(), "   ")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBadRequest)
}

func TestSearch_SendsBrowserHeaders(t *testing.T) {
	var gotUA, gotReferer string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotReferer = r.Header.Get("Referer")
		w.Write(big5(t, "<html></html>"))
	}))
	defer server.Close()

	client := testClient(t, server.URL)
	defer client.Close()

	_, err := client.Search(context.Background(), "任何")
	require.NoError(t, err)

	assert.Equal(t, "test-agent", gotUA)
	assert.Equal(t, server.URL+"/?M=hd", gotReferer)
}

func TestSearch_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := testClient(t, server.URL)
	defer client.Close()

	_, err := client.Search(context.Background(), "任何")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrServer)
}

func TestDownloadURL_Deterministic(t *testing.T) {
	client := testClient(t, "https://www.haodoo.net")
	defer client.Close()

	first := client.DownloadURL("B1234")
	assert.Equal(t, "https://www.haodoo.net/?M=d&P=B1234.epub", first)
	assert.Equal(t, first, client.DownloadURL("B1234"))
}

func TestParseDisplayText(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		title  string
		author string
	}{
		{"title and author", "《紅樓夢》曹雪芹", "紅樓夢", "曹雪芹"},
		{"bare title", "某本沒有括號的書", "某本沒有括號的書", ""},
		{"nested markup", "《三國演義》<b>羅貫中</b>", "三國演義", "羅貫中"},
		{"surrounding space", "  《聊齋》 蒲松齡  ", "聊齋", "蒲松齡"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			title, author := parseDisplayText(tt.text)
			assert.Equal(t, tt.title, title)
			assert.Equal(t, tt.author, author)
		})
	}
}
