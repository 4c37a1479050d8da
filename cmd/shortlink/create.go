package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/MikhailRaia/shortlink/internal/form"
)

var errShortenFailed = errors.New("shorten failed")

func newCreateCmd(c *cli) *cobra.Command {
	var (
		alias   string
		expires string
		copyURL bool
	)

	cmd := &cobra.Command{
		Use:   "create URL",
		Short: "Shorten a single URL and print the short link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// The process exits right after printing, so the copy label
			// never needs to revert.
			ctrl := c.newController(form.WithAfterFunc(func(time.Duration, func()) {}))
			ctrl.SetFields(form.Fields{URL: args[0], Alias: alias, Expiry: expires})

			_ = ctrl.Submit(cmd.Context())

			v := ctrl.View()
			if v.Error.Visible {
				fmt.Fprintln(cmd.ErrOrStderr(), v.Error.Text)
				return errShortenFailed
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, v.Result.Text)
			fmt.Fprintln(out, v.Result.Meta)

			if copyURL {
				if err := ctrl.Copy(); err != nil {
					return err
				}
				fmt.Fprintln(out, ctrl.View().Copy.Label)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&alias, "alias", "", "Custom short code")
	cmd.Flags().StringVar(&expires, "expires", "", "Expire the link after this many days")
	cmd.Flags().BoolVar(&copyURL, "copy", false, "Copy the short link to the clipboard")

	return cmd
}
