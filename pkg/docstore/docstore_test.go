package docstore

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tableflip.dev/lowerthird/pkg/activestate"
	"tableflip.dev/lowerthird/pkg/overlay"
)

func testPair(id string) *overlay.Pair {
	return &overlay.Pair{
		Overlay: overlay.Overlay{ID: id, Kind: overlay.KindPerson, Title: "Jane Smith", Subtitle: "Worship Leader"},
		Theme: overlay.Theme{
			ID: "theme-3", Name: "Vibrant", TitleColor: "#FFFFFF", SubtitleColor: "#FFFFFF",
			MaskBackgroundColor: "rgba(41, 171, 226, 0.9)",
			Layer1:              "https://example.com/a.png",
		},
	}
}

func newServer(t *testing.T) (*httptest.Server, *activestate.Memory) {
	t.Helper()
	backing := activestate.NewMemory()
	srv := New(nil)
	srv.Handle(activestate.Collection, activestate.Document, backing)
	hs := httptest.NewServer(srv.Handler())
	t.Cleanup(hs.Close)
	return hs, backing
}

func TestDocumentLifecycle(t *testing.T) {
	hs, backing := newServer(t)
	url := hs.URL + "/v1/documents/activeState/lowerThird"

	resp, err := http.Get(url)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "absent is 404")

	data, err := overlay.Encode(testPair("person-2"))
	require.NoError(t, err)
	req, _ := http.NewRequest(http.MethodPut, url, strings.NewReader(string(data)))
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	got, err := backing.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "person-2", got.Overlay.ID)
	assert.Equal(t, "https://example.com/a.png", got.Theme.Layer1)

	req, _ = http.NewRequest(http.MethodPut, url, strings.NewReader(`{"lowerThird":`))
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "malformed records are refused")

	for i := 0; i < 2; i++ {
		req, _ = http.NewRequest(http.MethodDelete, url, nil)
		resp, err = http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusNoContent, resp.StatusCode, "delete is idempotent")
	}

	resp, err = http.Get(hs.URL + "/v1/documents/other/doc")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRemoteStoreRoundTrip(t *testing.T) {
	hs, _ := newServer(t)
	remote := activestate.NewRemote(hs.URL, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := remote.Subscribe(ctx)
	require.NoError(t, err)
	next := func() activestate.Observation {
		select {
		case obs := <-ch:
			return obs
		case <-time.After(3 * time.Second):
			t.Fatalf("timed out waiting for observation")
		}
		return activestate.Observation{}
	}
	assert.Nil(t, next().Pair, "starts with none")

	require.NoError(t, remote.Set(ctx, testPair("person-2")))
	obs := next()
	require.NotNil(t, obs.Pair)
	assert.Equal(t, "person-2", obs.Pair.Overlay.ID)
	assert.Equal(t, "rgba(41, 171, 226, 0.9)", obs.Pair.Theme.MaskBackgroundColor)

	got, err := remote.Get(ctx)
	require.NoError(t, err)
	assert.True(t, overlay.SameIdentity(got, obs.Pair))

	require.NoError(t, remote.Set(ctx, nil))
	assert.Nil(t, next().Pair)
	got, err = remote.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)

	// A second hide changes nothing and is not observed.
	require.NoError(t, remote.Set(ctx, nil))
	select {
	case obs := <-ch:
		t.Fatalf("unexpected observation %s", obs.Pair)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestRemoteTransportErrors(t *testing.T) {
	hs, _ := newServer(t)
	remote := activestate.NewRemote(hs.URL, nil)
	hs.Close()

	err := remote.Set(context.Background(), testPair("person-1"))
	assert.Error(t, err)
	_, err = remote.Get(context.Background())
	assert.Error(t, err)
}
