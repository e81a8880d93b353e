package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/myrjola/interrogation/internal/models"
)

// Scripted is a deterministic reply generator for development and tests. It needs no network.
type Scripted struct{}

func (Scripted) Generate(_ context.Context, rc models.ReplyContext, player models.PlayerMessage) (string, error) {
	if rc.Rules.MustRefuse {
		return rc.FinalPhrase, nil
	}
	if player.Evidence != nil {
		switch rc.Rules.Effect {
		case models.EvidenceEffectRevealedSecret:
			contents := make([]string, 0, len(rc.RevealedNow))
			for _, secret := range rc.RevealedNow {
				contents = append(contents, secret.Content)
			}
			return fmt.Sprintf("...Fine, fine! That %s gives me away. %s",
				strings.ToLower(player.Evidence.Name), strings.Join(contents, " ")), nil
		case models.EvidenceEffectDuplicate:
			return fmt.Sprintf("%s sighs. \"We have been over the %s already.\"",
				rc.Suspect.Name, strings.ToLower(player.Evidence.Name)), nil
		case models.EvidenceEffectNone:
		}
		return fmt.Sprintf("%s glances at the %s and shrugs. \"That proves nothing.\"",
			rc.Suspect.Name, strings.ToLower(player.Evidence.Name)), nil
	}
	return fmt.Sprintf("%s answers calmly: \"I am cooperating, detective. You will need to be more specific.\"",
		rc.Suspect.Name), nil
}
