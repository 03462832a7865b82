package notify

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/bwmarrin/discordgo"
	"gorm.io/gorm"

	"github.com/stake-plus/govboard/src/api/types"
)

// Announcer posts newly discovered proposals to a Discord channel. Purely a
// convenience surface; failures never affect reconciliation.
type Announcer struct {
	db        *gorm.DB
	session   *discordgo.Session
	channelID string
	lastCheck time.Time
	seen      map[string]bool
}

func NewAnnouncer(db *gorm.DB, token, channelID string) (*Announcer, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("discord session: %w", err)
	}
	if err := session.Open(); err != nil {
		return nil, fmt.Errorf("discord open: %w", err)
	}
	return &Announcer{
		db:        db,
		session:   session,
		channelID: channelID,
		lastCheck: time.Now(),
		seen:      make(map[string]bool),
	}, nil
}

func (a *Announcer) Start(ctx context.Context) {
	log.Println("Starting Discord proposal announcer")
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Stopping Discord proposal announcer")
			a.session.Close()
			return
		case <-ticker.C:
			if err := a.checkNewProposals(); err != nil {
				log.Printf("Error checking new proposals: %v", err)
			}
		}
	}
}

func (a *Announcer) checkNewProposals() error {
	// CreatedAt carries the chain timestamp, which lies in the past for
	// anything discovered by reconciliation; row freshness is UpdatedAt.
	var proposals []types.CachedProposal
	err := a.db.Where("updated_at > ? AND recovered = ?", a.lastCheck, false).
		Order("updated_at ASC").
		Find(&proposals).Error
	if err != nil {
		return err
	}

	for _, p := range proposals {
		if !a.announceable(p) {
			continue
		}
		a.seen[p.TxHash] = true

		msg := fmt.Sprintf("New proposal **%s** by `%s` (voting until %s)",
			p.Title, p.Creator, p.Deadline.Format("2006-01-02 15:04 MST"))
		if _, err := a.session.ChannelMessageSend(a.channelID, msg); err != nil {
			log.Printf("Error announcing proposal %s: %v", p.TxHash, err)
		}
	}

	if len(proposals) > 0 {
		a.lastCheck = time.Now()
	}
	return nil
}

// announceable reports whether the row is a fresh, not yet announced
// proposal. The same proposal is cached once per connected account and
// re-created on every reconciliation pass, so dedup runs on the creation
// transaction hash and freshness on the row's insertion time.
func (a *Announcer) announceable(p types.CachedProposal) bool {
	return p.TxHash != "" && !a.seen[p.TxHash] && p.UpdatedAt.After(a.lastCheck)
}
