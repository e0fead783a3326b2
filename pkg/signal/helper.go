package signal

import (
	"github.com/AccelByte/extend-progression-engine/pkg/progression"
	"github.com/AccelByte/extend-progression-engine/pkg/service"
)

// BuildPlayerContext assembles a PlayerContext from a replayed log and the
// user's stored inputs. Unlock bonuses are added on top of the replayed XP.
func BuildPlayerContext(
	userID, namespace, today string,
	tables *progression.Tables,
	d *progression.Derivation,
	targets progression.Targets,
	goals map[string]int,
	unlocks []service.Unlock,
) *PlayerContext {
	unlocked := make(map[string]bool, len(unlocks))
	var bonus int64
	for _, u := range unlocks {
		unlocked[u.AchievementID] = true
		bonus += u.XPBonus
	}

	ledger := d.Ledger
	ledger.TotalXP += bonus

	if goals == nil {
		goals = make(map[string]int)
	}

	return &PlayerContext{
		UserID:        userID,
		Namespace:     namespace,
		DayKey:        today,
		Today:         tables.Finalize(d.Day(today), targets),
		Ledger:        ledger,
		Level:         tables.LevelFromXP(ledger.TotalXP),
		Lifetime:      d.Lifetime,
		Goals:         goals,
		Unlocked:      unlocked,
		UnlockBonusXP: bonus,
		Derivation:    d,
	}
}
