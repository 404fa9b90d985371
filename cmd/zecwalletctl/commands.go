// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/jessevdk/go-flags"
	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/zecwallet/zecwallet/pkg/zatoshi"
	"github.com/zecwallet/zecwallet/txrecords"
	"github.com/zecwallet/zecwallet/wallet"
)

// addCommands registers every command on parser. Each command reads the
// global options through cfg.
func addCommands(parser *flags.Parser, cfg *config) error {
	commands := []struct {
		name, short, long string
		data              interface{}
	}{
		{
			"getnote", "Show a single received note",
			"Looks up the note at the given index of a pool of a " +
				"transaction.",
			&getNoteCommand{cfg: cfg},
		},
		{
			"selectnotes", "Select notes covering a target value",
			"Selects unspent notes confirmed at or below the anchor " +
				"height whose total value covers the target.",
			&selectNotesCommand{cfg: cfg},
		},
		{
			"balance", "Show the spendable shielded balance",
			"Sums the value of every note selectnotes could choose " +
				"with the same options.",
			&balanceCommand{cfg: cfg},
		},
		{
			"getutxo", "Show a single unspent transparent output",
			"Looks up an unspent transparent output of a confirmed " +
				"transaction.",
			&getUtxoCommand{cfg: cfg},
		},
		{
			"listunspent", "List unspent transparent outputs",
			"Lists the unspent transparent outputs of transactions " +
				"confirmed at or below the given height.",
			&listUnspentCommand{cfg: cfg},
		},
		{
			"listrecords", "List stored transaction records",
			"Prints a summary of every stored transaction record in " +
				"transaction id order.",
			&listRecordsCommand{cfg: cfg},
		},
	}

	for _, c := range commands {
		_, err := parser.AddCommand(c.name, c.short, c.long, c.data)
		if err != nil {
			return err
		}
	}

	return nil
}

// withInputSource opens the configured store and calls f with an input
// source over it using the given pool policies.
func withInputSource(cfg *config, pools []wallet.PoolPolicy,
	f func(context.Context, *wallet.InputSource) error) error {

	return withStore(cfg, func(ctx context.Context,
		store txrecords.RecordStore) error {

		source, err := wallet.NewInputSource(wallet.Config{
			Store: store,
			Pools: pools,
		})
		if err != nil {
			return err
		}

		return f(ctx, source)
	})
}

// withStore opens the configured store, calls f and closes the store.
func withStore(cfg *config,
	f func(context.Context, txrecords.RecordStore) error) error {

	store, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.Errorf("Unable to close record store: %v", err)
		}
	}()

	return f(context.Background(), store)
}

type getNoteCommand struct {
	TxID  string `long:"txid" required:"true" description:"Transaction id holding the note"`
	Pool  string `long:"pool" default:"sapling" description:"Pool of the note" choice:"sapling" choice:"orchard"`
	Index uint32 `long:"index" description:"Index of the note within the pool"`

	cfg *config
}

// Execute prints the note, or null if there is no such note.
func (c *getNoteCommand) Execute(_ []string) error {
	txid, err := chainhash.NewHashFromStr(c.TxID)
	if err != nil {
		return err
	}

	pool, err := txrecords.ParseShieldedProtocol(c.Pool)
	if err != nil {
		return err
	}

	return withInputSource(c.cfg, wallet.DefaultPoolPolicies(),
		func(ctx context.Context, s *wallet.InputSource) error {
			note, err := s.GetSpendableNote(ctx, *txid, pool, c.Index)
			if err != nil {
				return err
			}

			var result *noteResult
			note.WhenSome(func(n txrecords.ReceivedNote) {
				r := newNoteResult(n)
				result = &r
			})

			return printJSON(c.cfg.out, result)
		},
	)
}

// selectionOptions are the eligibility options shared by selectnotes and
// balance.
type selectionOptions struct {
	Account uint32   `long:"account" description:"Account to select notes for"`
	Anchor  uint32   `long:"anchor" required:"true" description:"Highest confirmation height of eligible notes"`
	Pools   []string `long:"pool" default:"sapling" default:"orchard" description:"Pools notes may be taken from, can be repeated"`
	Exclude []string `long:"exclude" description:"Note to leave out, as txid:pool:index, can be repeated"`
}

func (o *selectionOptions) parse() ([]txrecords.ShieldedProtocol,
	fn.Set[txrecords.NoteID], error) {

	pools := make([]txrecords.ShieldedProtocol, 0, len(o.Pools))
	for _, p := range o.Pools {
		pool, err := txrecords.ParseShieldedProtocol(p)
		if err != nil {
			return nil, nil, err
		}
		pools = append(pools, pool)
	}

	exclude := fn.NewSet[txrecords.NoteID]()
	for _, e := range o.Exclude {
		id, err := txrecords.ParseNoteID(e)
		if err != nil {
			return nil, nil, err
		}
		exclude.Add(id)
	}

	return pools, exclude, nil
}

type selectNotesCommand struct {
	selectionOptions

	Target   uint64 `long:"target" required:"true" description:"Value to cover in zatoshi"`
	Strategy string `long:"strategy" default:"largest" description:"Order in which notes of a pool are spent" choice:"largest" choice:"random"`

	cfg *config
}

// Execute prints the selected notes.
func (c *selectNotesCommand) Execute(_ []string) error {
	target, err := zatoshi.FromUint64(c.Target)
	if err != nil {
		return err
	}

	pools, exclude, err := c.parse()
	if err != nil {
		return err
	}

	strategy := wallet.NotesLargestFirst
	if c.Strategy == "random" {
		strategy = wallet.NotesRandom
	}

	policies := wallet.DefaultPoolPolicies()
	for i := range policies {
		policies[i].Strategy = strategy
	}

	return withInputSource(c.cfg, policies,
		func(ctx context.Context, s *wallet.InputSource) error {
			notes, err := s.SelectSpendableNotes(
				ctx, wallet.AccountID(c.Account), target, pools,
				txrecords.BlockHeight(c.Anchor), exclude,
			)
			if err != nil {
				return err
			}

			result, err := newSelectionResult(target, notes)
			if err != nil {
				return err
			}

			return printJSON(c.cfg.out, result)
		},
	)
}

type balanceCommand struct {
	selectionOptions

	cfg *config
}

// Execute prints the spendable balance.
func (c *balanceCommand) Execute(_ []string) error {
	pools, exclude, err := c.parse()
	if err != nil {
		return err
	}

	return withInputSource(c.cfg, wallet.DefaultPoolPolicies(),
		func(ctx context.Context, s *wallet.InputSource) error {
			value, err := s.SpendableValue(
				ctx, wallet.AccountID(c.Account), pools,
				txrecords.BlockHeight(c.Anchor), exclude,
			)
			if err != nil {
				return err
			}

			return printJSON(c.cfg.out, balanceResult{
				Anchor: c.Anchor,
				Value:  value.Uint64(),
				Zec:    value.ToZec(),
			})
		},
	)
}

type getUtxoCommand struct {
	OutPoint string `long:"outpoint" required:"true" description:"Output as txid:index"`

	cfg *config
}

// Execute prints the output, or null if it is unknown, unconfirmed or
// spent.
func (c *getUtxoCommand) Execute(_ []string) error {
	op, err := wire.NewOutPointFromString(c.OutPoint)
	if err != nil {
		return err
	}

	return withInputSource(c.cfg, wallet.DefaultPoolPolicies(),
		func(ctx context.Context, s *wallet.InputSource) error {
			output, err := s.GetUnspentTransparentOutput(ctx, *op)
			if err != nil {
				return err
			}

			var result *utxoResult
			output.WhenSome(func(o wallet.TransparentOutput) {
				r := newUtxoResult(o)
				result = &r
			})

			return printJSON(c.cfg.out, result)
		},
	)
}

type listUnspentCommand struct {
	MaxHeight   uint32   `long:"maxheight" required:"true" description:"Highest confirmation height of listed outputs"`
	Exclude     []string `long:"exclude" description:"Output to leave out, as txid:index, can be repeated"`
	Address     string   `long:"address" description:"Transparent address the outputs are listed for"`
	OnlyAddress bool     `long:"onlyaddress" description:"Drop outputs that do not pay to --address"`

	cfg *config
}

// Execute prints the unspent outputs.
func (c *listUnspentCommand) Execute(_ []string) error {
	var addr wallet.TransparentAddress
	if c.Address != "" {
		var err error
		addr, err = wallet.DecodeTransparentAddress(
			c.Address, c.cfg.addressParams(),
		)
		if err != nil {
			return err
		}
	} else if c.OnlyAddress {
		return fmt.Errorf("--onlyaddress requires --address")
	}

	exclude := fn.NewSet[wire.OutPoint]()
	for _, e := range c.Exclude {
		op, err := wire.NewOutPointFromString(e)
		if err != nil {
			return err
		}
		exclude.Add(*op)
	}

	return withInputSource(c.cfg, wallet.DefaultPoolPolicies(),
		func(ctx context.Context, s *wallet.InputSource) error {
			outputs, err := s.GetUnspentTransparentOutputs(
				ctx, addr, txrecords.BlockHeight(c.MaxHeight),
				exclude,
			)
			if err != nil {
				return err
			}

			results := make([]utxoResult, 0, len(outputs))
			for _, o := range outputs {
				if c.OnlyAddress && !addr.IsPaidBy(o.TxOut.PkScript) {
					continue
				}
				results = append(results, newUtxoResult(o))
			}

			return printJSON(c.cfg.out, results)
		},
	)
}

type listRecordsCommand struct {
	cfg *config
}

// Execute prints a summary of every record.
func (c *listRecordsCommand) Execute(_ []string) error {
	return withStore(c.cfg, func(ctx context.Context,
		store txrecords.RecordStore) error {

		results := []recordResult{}
		err := store.View(ctx, func(r txrecords.RecordReader) error {
			return r.ForEachRecord(
				func(rec *txrecords.TransactionRecord) error {
					results = append(
						results, newRecordResult(rec),
					)
					return nil
				},
			)
		})
		if err != nil {
			return err
		}

		return printJSON(c.cfg.out, results)
	})
}
