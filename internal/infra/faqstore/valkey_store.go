package faqstore

import (
	"context"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/faq-engine/internal/domain/faq"
)

// ValkeyStore keeps trending counters in one sorted set per UTC day. Day keys expire once
// they fall out of the window so the keyspace stays bounded.
type ValkeyStore struct {
	client valkey.Client
	prefix string
	window int
	now    func() time.Time
}

// NewValkeyStore constructs a new store backed by Valkey.
func NewValkeyStore(client valkey.Client, prefix string, windowDays int) *ValkeyStore {
	if prefix == "" {
		prefix = "faq"
	}
	if windowDays <= 0 {
		windowDays = defaultWindowDays
	}
	return &ValkeyStore{client: client, prefix: prefix, window: windowDays, now: time.Now}
}

func (s *ValkeyStore) IncrementQuery(ctx context.Context, canonical, display string) error {
	if canonical == "" {
		return nil
	}
	key := s.dayKey(dayStamp(s.now()))
	cmds := valkey.Commands{
		s.client.B().Zincrby().Key(key).Increment(1).Member(canonical).Build(),
		s.client.B().Expire().Key(key).Seconds(int64(s.window+1) * 86400).Build(),
	}
	for _, resp := range s.client.DoMulti(ctx, cmds...) {
		if err := resp.Error(); err != nil {
			return err
		}
	}
	if display != "" {
		_ = s.client.Do(ctx, s.client.B().Set().Key(s.displayKey(canonical)).Value(display).Nx().Build()).Error()
	}
	return nil
}

func (s *ValkeyStore) TopQueries(ctx context.Context, limit int) ([]faq.TrendingQuery, error) {
	totals := make(map[string]int64)
	for _, day := range windowDays(s.now(), s.window) {
		cmd := s.client.B().Zrevrange().Key(s.dayKey(day)).Start(0).Stop(-1).Withscores().Build()
		scores, err := s.client.Do(ctx, cmd).AsZScores()
		if err != nil {
			if valkey.IsValkeyNil(err) {
				continue
			}
			return nil, err
		}
		for _, z := range scores {
			totals[z.Member] += int64(z.Score)
		}
	}
	items := rankTrending(totals, nil, limit)
	for i := range items {
		items[i].Query = s.fetchDisplay(ctx, items[i].Query)
	}
	return items, nil
}

func (s *ValkeyStore) fetchDisplay(ctx context.Context, canonical string) string {
	display, err := s.client.Do(ctx, s.client.B().Get().Key(s.displayKey(canonical)).Build()).ToString()
	if err != nil || display == "" {
		return canonical
	}
	return display
}

func (s *ValkeyStore) dayKey(day string) string {
	return fmt.Sprintf("%s:trending:%s", s.prefix, day)
}

func (s *ValkeyStore) displayKey(canonical string) string {
	return fmt.Sprintf("%s:display:%s", s.prefix, canonical)
}

var _ faq.TrendingStore = (*ValkeyStore)(nil)
