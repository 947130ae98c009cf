package errors

import (
	"fmt"
	"time"

	"github.com/go-lark/lark"
	"olympus.io/loot-of-olympus/pkg/log"
)

type larkReporter struct {
	title string
	bot   *lark.Bot
	delay *rateLimiter
}

// NewLarkReporter registers a lark webhook reporter. The same call site is reported
// at most once per silent window.
func NewLarkReporter(title, webhook string, silent time.Duration) {
	if webhook == "" {
		log.Warn("empty lark webhook found, skipping lark reporter initialization.")
		return
	}
	RegisterReporter(&larkReporter{
		title: title,
		bot:   lark.NewNotificationBot(webhook),
		delay: newRateLimiter(silent),
	})
	log.Info("Lark error reporter initialized.")
}

func (r *larkReporter) Report(err error) {
	if err == nil {
		return
	}
	stacks := callers().fullStack()
	limited, stats := r.delay.StackBasedRateLimited(reportSite(stacks))
	if limited {
		return
	}
	pb := lark.NewPostBuilder()
	pb.Title(r.title)
	pb.TextTag(fmt.Sprintf("Last Report: %v", formatReportTime(stats.lastReportTime)), 1, true)
	pb.TextTag(fmt.Sprintf("\nError Count Since Last Report: %v", stats.occurCountSinceLastReport), 1, true)
	pb.TextTag(fmt.Sprintf("\nMessage: %v", err.Error()), 1, true)
	pb.TextTag("\nStacks:", 1, true)
	for _, s := range stacks {
		pb.TextTag(fmt.Sprintf("\n    %s", s), 1, true)
	}
	if _, err := r.bot.PostNotificationV2(lark.OutcomingMessage{
		MsgType: "post",
		Content: lark.MessageContent{
			Post: pb.Render(),
		},
	}); err != nil {
		log.Error(WithStack(err))
	}
}

func formatReportTime(time *time.Time) string {
	if time == nil {
		return "none"
	}
	return time.Format("2006.01.02 15:04")
}
