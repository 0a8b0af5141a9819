package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (a *app) testCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "test [provider...]",
		Short: "Check stored API keys against their providers",
		Long: `Send a minimal request with each stored key and report which work.

Without arguments every configured provider is tested.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := args
			if len(ids) == 0 {
				for _, e := range a.store.ListProviders() {
					ids = append(ids, e.Name)
				}
			}
			if len(ids) == 0 {
				fmt.Fprintln(a.out, "No providers configured. Run 'docsum keys add <provider>'.")
				return nil
			}

			failed := 0
			for _, id := range ids {
				p, err := a.client(id)
				if err != nil {
					failure(a.out, "%s: %v", id, err)
					failed++
					continue
				}

				ctx, cancel := a.withTimeout(cmd.Context())
				ok := p.TestConnection(ctx)
				cancel()
				p.Close()

				if ok {
					success(a.out, "%s (%s)", brand(p.Descriptor()), p.Model())
				} else {
					failure(a.out, "%s (%s)", brand(p.Descriptor()), p.Model())
					failed++
				}
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d providers failed the connection test", failed, len(ids))
			}
			return nil
		},
	}
}
