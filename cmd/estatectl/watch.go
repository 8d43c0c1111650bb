/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package main

import (
	"github.com/spf13/cobra"

	"github.com/suparena/estatesync/backend"
	"github.com/suparena/estatesync/models"
)

var (
	watchCount  int
	watchStatus string
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream live data",
	Long:  `Prints every envelope of a live stream until interrupted or --count envelopes were printed.`,
}

var watchUserCmd = &cobra.Command{
	Use:   "user [user-id]",
	Short: "Watch one user profile",
	Args:  cobra.ExactArgs(1),
	RunE: withSession(func(cmd *cobra.Command, args []string, s *session) error {
		return follow(cmd.Context(), cmd.OutOrStdout(), s.client.Admin().WatchUser(args[0]), watchCount, userDoc)
	}),
}

var watchUsersCmd = &cobra.Command{
	Use:   "users",
	Short: "Watch all user profiles",
	Args:  cobra.NoArgs,
	RunE: withSession(func(cmd *cobra.Command, _ []string, s *session) error {
		return follow(cmd.Context(), cmd.OutOrStdout(), s.client.Admin().WatchUsers(), watchCount, usersDoc)
	}),
}

var watchPropertyCmd = &cobra.Command{
	Use:   "property [property-id]",
	Short: "Watch one property",
	Args:  cobra.ExactArgs(1),
	RunE: withSession(func(cmd *cobra.Command, args []string, s *session) error {
		return follow(cmd.Context(), cmd.OutOrStdout(), s.client.Properties().WatchProperty(args[0]), watchCount, propertyDoc)
	}),
}

var watchPropertiesCmd = &cobra.Command{
	Use:   "properties",
	Short: "Watch all properties, optionally by status",
	Args:  cobra.NoArgs,
	RunE: withSession(func(cmd *cobra.Command, _ []string, s *session) error {
		var filter *backend.Filter
		if watchStatus != "" {
			filter = &backend.Filter{Field: "status", Value: watchStatus}
		}
		return follow(cmd.Context(), cmd.OutOrStdout(), s.client.Properties().WatchProperties(filter), watchCount, propertiesDoc)
	}),
}

var watchSettingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Watch the application settings",
	Args:  cobra.NoArgs,
	RunE: withSession(func(cmd *cobra.Command, _ []string, s *session) error {
		return follow(cmd.Context(), cmd.OutOrStdout(), s.client.Settings().WatchSettings(), watchCount, settingDoc)
	}),
}

func init() {
	watchCmd.PersistentFlags().IntVarP(&watchCount, "count", "n", 0, "Stop after this many envelopes (0 = until interrupted)")
	watchPropertiesCmd.Flags().StringVar(&watchStatus, "status", "", "Only properties with this status (open, funded, closed)")

	watchCmd.AddCommand(watchUserCmd)
	watchCmd.AddCommand(watchUsersCmd)
	watchCmd.AddCommand(watchPropertyCmd)
	watchCmd.AddCommand(watchPropertiesCmd)
	watchCmd.AddCommand(watchSettingsCmd)
	rootCmd.AddCommand(watchCmd)
}

func userDoc(u *models.User) any {
	if u == nil {
		return nil
	}
	return u.ToDocument().Data
}

func usersDoc(users []models.User) any {
	out := make([]map[string]any, 0, len(users))
	for _, u := range users {
		out = append(out, u.ToDocument().Data)
	}
	return out
}

func propertyDoc(p *models.Property) any {
	if p == nil {
		return nil
	}
	return p.ToDocument().Data
}

func propertiesDoc(props []models.Property) any {
	out := make([]map[string]any, 0, len(props))
	for _, p := range props {
		out = append(out, p.ToDocument().Data)
	}
	return out
}

func settingDoc(s models.Setting) any {
	return s.ToDocument().Data
}
