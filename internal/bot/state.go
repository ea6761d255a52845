package bot

import (
	"github.com/telefetch/telefetch/internal/sync_"
)

// chatState is the conversation position of one chat. The pending URL lives
// here rather than in callback data, which has a hard 64-byte limit.
type chatState struct {
	awaitingURL bool
	pendingURL  string
}

type stateStore struct {
	chats *sync_.RWMutexed[map[int64]*chatState]
}

func newStateStore() *stateStore {
	return &stateStore{chats: sync_.NewRWMutexed(make(map[int64]*chatState))}
}

// expectURL marks the chat as waiting for a video URL, discarding any
// previous pending request.
func (s *stateStore) expectURL(chatID int64) {
	_ = s.chats.Locked(func(m map[int64]*chatState) error {
		m[chatID] = &chatState{awaitingURL: true}
		return nil
	})
}

func (s *stateStore) awaitingURL(chatID int64) bool {
	var awaiting bool
	_ = s.chats.RLocked(func(m map[int64]*chatState) error {
		if st, ok := m[chatID]; ok {
			awaiting = st.awaitingURL
		}
		return nil
	})
	return awaiting
}

// setPendingURL stores the validated URL for the quality selection step and
// ends the URL-waiting state.
func (s *stateStore) setPendingURL(chatID int64, url string) {
	_ = s.chats.Locked(func(m map[int64]*chatState) error {
		m[chatID] = &chatState{pendingURL: url}
		return nil
	})
}

// takePendingURL returns and clears the chat's pending URL, so a double-tap
// on the quality keyboard cannot start two downloads of the same request.
func (s *stateStore) takePendingURL(chatID int64) (string, bool) {
	var url string
	_ = s.chats.Locked(func(m map[int64]*chatState) error {
		if st, ok := m[chatID]; ok && st.pendingURL != "" {
			url = st.pendingURL
			delete(m, chatID)
		}
		return nil
	})
	return url, url != ""
}
