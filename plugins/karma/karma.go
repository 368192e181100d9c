// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Chatwire Contributors

// Package karma implements the built-in karma plugin: "thing++" and
// "thing--" adjust an in-memory score per subject.
package karma

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/chatwire/chatwire/pkg/chat"
	"github.com/chatwire/chatwire/pkg/listener"
)

// ListenerName is the name this plugin's listener registers under and the
// name manifests declare.
const ListenerName = "KarmaMessageListener"

func init() {
	listener.Register(ListenerName, func() listener.Listener { return New() })
}

// votePattern captures subjects followed by ++ or --. Subjects are single
// words; the bot mention itself never counts.
var votePattern = regexp.MustCompile(`(?:^|\s)([\w-]+)(\+\+|--)`)

// Karma tallies votes in memory. Scores reset when the process restarts.
type Karma struct {
	mu     sync.Mutex
	scores map[string]int
}

// New creates a karma listener with an empty tally.
func New() *Karma {
	return &Karma{scores: make(map[string]int)}
}

// Matches accepts messages carrying at least one vote.
func (k *Karma) Matches(_ context.Context, msg *chat.Context) (bool, error) {
	return votePattern.MatchString(msg.Text), nil
}

// Process applies every vote in the message and reports the new scores.
func (k *Karma) Process(_ context.Context, msg *chat.Context) ([]chat.OutboundMessage, error) {
	votes := votePattern.FindAllStringSubmatch(msg.Text, -1)
	if len(votes) == 0 {
		return nil, nil
	}

	k.mu.Lock()
	touched := make(map[string]int, len(votes))
	for _, v := range votes {
		subject := v[1]
		if v[2] == "++" {
			k.scores[subject]++
		} else {
			k.scores[subject]--
		}
		touched[subject] = k.scores[subject]
	}
	k.mu.Unlock()

	subjects := make([]string, 0, len(touched))
	for subject := range touched {
		subjects = append(subjects, subject)
	}
	sort.Strings(subjects)

	parts := make([]string, 0, len(subjects))
	for _, subject := range subjects {
		parts = append(parts, fmt.Sprintf("%s has %d karma", subject, touched[subject]))
	}
	return []chat.OutboundMessage{chat.Reply(msg, strings.Join(parts, ", "))}, nil
}

// Score returns the current score for a subject.
func (k *Karma) Score(subject string) int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.scores[subject]
}
