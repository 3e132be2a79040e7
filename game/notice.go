package game

import (
	"time"

	"github.com/pthm-cable/swarm/telemetry"
)

// How long each announcement stays up.
const (
	stageNoticeDuration   = 10 * time.Second
	levelUpNoticeDuration = 3 * time.Second
)

// NoticeKind identifies an announcement.
type NoticeKind uint8

const (
	NoticeNone NoticeKind = iota
	NoticeStage
	NoticeLevelUp
)

// Notice is the most recent stage or level-up announcement.
type Notice struct {
	Kind      NoticeKind
	Stage     telemetry.StageEvent   // valid for NoticeStage
	LevelUp   telemetry.LevelUpEvent // valid for NoticeLevelUp
	Remaining time.Duration
}

type noticeState struct {
	notice  Notice
	expires time.Duration
}

// announce replaces the current notice. A level-up never hides a stage notice.
func (g *Game) announce(n Notice, now, d time.Duration) {
	if n.Kind == NoticeLevelUp && g.notice.notice.Kind == NoticeStage && now < g.notice.expires {
		return
	}
	g.notice = noticeState{notice: n, expires: now + d}
}

// Notice returns the announcement still on screen, or one with Kind NoticeNone.
func (g *Game) Notice() Notice {
	now := g.clock.Now()
	if g.notice.notice.Kind == NoticeNone || now >= g.notice.expires {
		return Notice{}
	}
	n := g.notice.notice
	n.Remaining = g.notice.expires - now
	return n
}

// DismissNotice hides the current announcement.
func (g *Game) DismissNotice() {
	g.notice = noticeState{}
}
