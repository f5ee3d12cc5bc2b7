// Package stats computes the moderation numbers shown on the admin dashboard.
package stats

import (
	"context"

	"github.com/example/mentor-platform/services/moderation/internal/store"
)

type Overview struct {
	TotalThreads    int `json:"totalThreads"`
	TotalAnswers    int `json:"totalAnswers"`
	TotalMessages   int `json:"totalMessages"`
	TotalFlags      int `json:"totalFlags"`
	OpenFlags       int `json:"openFlags"`
	FlaggedQA       int `json:"flaggedQA"`
	FlaggedMessages int `json:"flaggedMessages"`
}

// Compute reads every collection once. FlaggedQA counts flags against
// threads and answers in any status; OpenFlags counts new and in_review flags
// of every target type.
func Compute(ctx context.Context, st *store.Store) (Overview, error) {
	threads, err := st.Threads.Collection().All(ctx)
	if err != nil {
		return Overview{}, err
	}
	answers, err := st.Answers.Collection().All(ctx)
	if err != nil {
		return Overview{}, err
	}
	msgs, err := st.Messages.Collection().All(ctx)
	if err != nil {
		return Overview{}, err
	}
	flags, err := st.Flags.All(ctx)
	if err != nil {
		return Overview{}, err
	}

	o := Overview{
		TotalThreads:  len(threads),
		TotalAnswers:  len(answers),
		TotalMessages: len(msgs),
		TotalFlags:    len(flags),
	}
	for _, f := range flags {
		if f.Status.Open() {
			o.OpenFlags++
		}
		if f.TargetType == store.TargetThread || f.TargetType == store.TargetAnswer {
			o.FlaggedQA++
		}
	}
	for _, m := range msgs {
		if m.Flagged {
			o.FlaggedMessages++
		}
	}
	return o, nil
}
