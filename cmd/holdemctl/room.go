package main

import (
	"errors"

	"github.com/spf13/cobra"

	"holdem-server/internal/config"
	"holdem-server/pkg/model"
	"holdem-server/pkg/room"
)

func newRoomCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "room",
		Short: "Room management commands",
	}

	cmd.AddCommand(newRoomCreateCmd())
	cmd.AddCommand(newRoomGetCmd())
	cmd.AddCommand(newRoomSeatCmd())

	return cmd
}

// withPitBoss runs fn against the configured database
func withPitBoss(fn func(p *room.PitBoss) error) error {
	dbh, err := openDB()
	if err != nil {
		return err
	}
	defer dbh.Close()

	game := config.Instance().Game
	p := room.NewPitBoss(model.NewPostgres(dbh), room.WithRoomDefaults(room.RoomDefaults{
		SmallBlind:    game.SmallBlind,
		BigBlind:      game.BigBlind,
		MaxPlayers:    game.MaxPlayers,
		StartingChips: game.StartingChips,
	}))
	defer p.Close()

	return fn(p)
}

func newRoomCreateCmd() *cobra.Command {
	var (
		owner                            int64
		name                             string
		smallBlind, bigBlind, maxPlayers int
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new room",
		RunE: func(cmd *cobra.Command, args []string) error {
			if owner <= 0 {
				return errors.New("--owner is required")
			}

			return withPitBoss(func(p *room.PitBoss) error {
				rm, err := p.CreateRoom(cmd.Context(), owner, name, smallBlind, bigBlind, maxPlayers)
				if err != nil {
					return err
				}

				return printJSON(cmd.OutOrStdout(), rm)
			})
		},
	}

	cmd.Flags().Int64Var(&owner, "owner", 0, "User creating the room")
	cmd.Flags().StringVar(&name, "name", "", "Room name (default: a random name)")
	cmd.Flags().IntVar(&smallBlind, "small-blind", 0, "Small blind (default: server default)")
	cmd.Flags().IntVar(&bigBlind, "big-blind", 0, "Big blind (default: server default)")
	cmd.Flags().IntVar(&maxPlayers, "max-players", 0, "Seats at the table (default: server default)")

	return cmd
}

func newRoomGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <room-id>",
		Short: "Show a room and its players",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPitBoss(func(p *room.PitBoss) error {
				view, err := p.Room(cmd.Context(), args[0])
				if err != nil {
					return err
				}

				return printJSON(cmd.OutOrStdout(), view)
			})
		},
	}
}

func newRoomSeatCmd() *cobra.Command {
	var userID int64

	cmd := &cobra.Command{
		Use:   "seat <room-id>",
		Short: "Seat a user in a room with the starting bankroll",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID <= 0 {
				return errors.New("--user-id is required")
			}

			return withPitBoss(func(p *room.PitBoss) error {
				rp, err := p.SeatPlayer(cmd.Context(), args[0], userID)
				if err != nil {
					return err
				}

				return printJSON(cmd.OutOrStdout(), rp)
			})
		},
	}

	cmd.Flags().Int64Var(&userID, "user-id", 0, "User to seat")

	return cmd
}
