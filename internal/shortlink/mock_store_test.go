package shortlink_test

import (
	"context"
	"errors"
	"time"

	"github.com/serroba/shortlink-go/internal/shortlink"
)

var errMock = errors.New("mock error")

const testURL = "https://example.com/very/long/path"

// mockStore is a configurable test double for shortlink.Repository.
type mockStore struct {
	// takenTimes makes the first N inserts report ErrCodeTaken.
	takenTimes   int
	insertErr    error
	findErr      error
	findLink     *shortlink.ShortLink
	insertCalls  int
	lastInserted *shortlink.ShortLink
}

func (m *mockStore) Insert(_ context.Context, link *shortlink.ShortLink) error {
	m.insertCalls++

	if m.takenTimes > 0 {
		m.takenTimes--

		return shortlink.ErrCodeTaken
	}

	if m.insertErr != nil {
		return m.insertErr
	}

	m.lastInserted = link

	return nil
}

func (m *mockStore) FindByCode(_ context.Context, _ shortlink.Code) (*shortlink.ShortLink, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}

	if m.findLink == nil {
		return nil, shortlink.ErrNotFound
	}

	return m.findLink, nil
}

// mockCache is a test double for shortlink.Cache that can be configured to fail.
type mockCache struct {
	getErr   error
	setErr   error
	target   string
	setCalls int
}

func (m *mockCache) Get(_ context.Context, _ shortlink.Code) (string, error) {
	if m.getErr != nil {
		return "", m.getErr
	}

	if m.target == "" {
		return "", shortlink.ErrNotFound
	}

	return m.target, nil
}

func (m *mockCache) Set(_ context.Context, _ shortlink.Code, target string, _ time.Duration) error {
	m.setCalls++

	if m.setErr != nil {
		return m.setErr
	}

	m.target = target

	return nil
}
