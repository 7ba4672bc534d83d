package root

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/xmuzan/samplepomodoro/internal/auth"
	"github.com/xmuzan/samplepomodoro/internal/progress"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <username>",
		Short: "Show a player's progress, vitals and the boss",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			svc, stores, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			name := auth.NormalizeUsername(args[0])
			if _, err := stores.Players.Load(ctx, name); err != nil {
				return err
			}
			v, err := svc.State(ctx, name)
			if err != nil {
				return err
			}
			boss, err := svc.Boss(ctx)
			if err != nil {
				return err
			}
			st := v.State
			w := cmd.OutOrStdout()

			fmt.Fprintln(w, Heading(IconSparkle, v.Username))
			fmt.Fprintln(w, LabelValue("Level", fmt.Sprintf("%d (tier %s)", st.Level, st.Tier)))
			fmt.Fprintln(w, LabelValue("Progress", fmt.Sprintf("%d / %d tasks", st.TasksCompletedThisLevel, st.TasksRequiredForNextLevel)))
			fmt.Fprintln(w, LabelValue("Gold", Gold.Render(fmt.Sprintf("%s %d", IconGold, st.Gold))))
			if st.AttributePoints > 0 {
				fmt.Fprintln(w, LabelValue("Attribute points", st.AttributePoints))
			}
			fmt.Fprintln(w, "")

			vitals := strings.Join([]string{
				"HP " + Bar(st.Vitals.HP, progress.MaxVital),
				"MP " + Bar(st.Vitals.MP, progress.MaxVital),
				"IR " + Bar(st.Vitals.IR, progress.MaxVital),
			}, "\n")
			fmt.Fprintln(w, Panel.Render(vitals))

			switch {
			case v.PenaltyActive:
				fmt.Fprintln(w, Bad.Render(fmt.Sprintf("%s penalty for %s", IconWarn, v.Timers.Penalty.Round(time.Minute))))
			case v.Timers.Deadline > 0:
				fmt.Fprintln(w, Warn.Render(fmt.Sprintf("deadline in %s", v.Timers.Deadline.Round(time.Minute))))
			}
			fmt.Fprintln(w, "")

			fmt.Fprintln(w, H2.Render("Skills"))
			for _, sk := range v.Skills {
				fmt.Fprintf(w, "- %s %s %s\n", Key.Render(sk.Label+":"), sk.Rank,
					Muted.Render(fmt.Sprintf("(%d/%d)", sk.CompletedTasks, sk.TasksPerRank)))
			}

			open := 0
			for _, t := range st.Tasks {
				if !t.Completed {
					open++
				}
			}
			fmt.Fprintln(w, "")
			fmt.Fprintln(w, LabelValue("Tasks", fmt.Sprintf("%d open, %d total", open, len(st.Tasks))))
			if len(st.Inventory) > 0 {
				items := make([]string, 0, len(st.Inventory))
				for _, it := range st.Inventory {
					items = append(items, fmt.Sprintf("%s x%d", it.ItemID, it.Quantity))
				}
				fmt.Fprintln(w, LabelValue("Inventory", strings.Join(items, ", ")))
			}

			fmt.Fprintln(w, "")
			bossLine := fmt.Sprintf("%.0f / %.0f HP", boss.HP, boss.MaxHP)
			if !boss.Alive(time.Now()) {
				bossLine = Muted.Render("resting for " + v.Timers.BossRespawn.Round(time.Minute).String())
			}
			fmt.Fprintln(w, H2.Render(IconBoss+" "+boss.Name), bossLine)
			return nil
		},
	}
}
