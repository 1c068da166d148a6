// This program bootstraps a single powchain node: it wires the blockchain
// core, a local gossip transport and the network event loop together, and
// exposes serve/mine/status as cobra subcommands. The HTTP/REST façade,
// process supervision and the real peer-discovery transport are external
// collaborators and are not this program's concern.
package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ardanlabs/conf/v3"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jrmckee/powchain/foundation/blockchain/database"
	"github.com/jrmckee/powchain/foundation/blockchain/state"
	"github.com/jrmckee/powchain/foundation/network"
)

// cfg mirrors the (difficulty, mining_reward) construction parameters the
// core accepts; everything else here (mempool cap, miner address) is a local
// operational knob, not part of the core's contract.
type cfg struct {
	Difficulty   int    `conf:"default:2" validate:"min=0,max=64"`
	MiningReward uint64 `conf:"default:50" validate:"min=1"`
	MempoolCap   int    `conf:"default:5000" validate:"min=1"`
	MinerAddress string `conf:"default:0xminer000000000000000000000000000000000" validate:"required"`
}

func validateCfg(appCfg cfg) error {
	return validator.New().Struct(appCfg)
}

func main() {
	log, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	sugar := log.Sugar()

	if err := run(sugar); err != nil {
		sugar.Errorw("startup", "err", err)
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {
	var appCfg cfg
	help, err := conf.Parse("POWCHAIN", &appCfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}
	if err := validateCfg(appCfg); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}

	root := &cobra.Command{
		Use:   "node",
		Short: "run a powchain node",
	}

	root.AddCommand(statusCmd(log, appCfg), mineCmd(log, appCfg), serveCmd(log, appCfg))

	return root.Execute()
}

func newState(log *zap.SugaredLogger, appCfg cfg) *state.State {
	ev := func(v string, args ...any) {
		log.Infow(fmt.Sprintf(v, args...))
	}

	return state.New(state.Config{
		Difficulty:   appCfg.Difficulty,
		MiningReward: appCfg.MiningReward,
		MempoolCap:   appCfg.MempoolCap,
		EvHandler:    ev,
	})
}

func statusCmd(log *zap.SugaredLogger, appCfg cfg) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "print chain height and validity",
		RunE: func(cmd *cobra.Command, args []string) error {
			st := newState(log, appCfg)
			log.Infow("chain status", "height", st.Height(), "valid", st.IsChainValid())
			return nil
		},
	}
}

func mineCmd(log *zap.SugaredLogger, appCfg cfg) *cobra.Command {
	return &cobra.Command{
		Use:   "mine",
		Short: "mine a block against an empty mempool, for local smoke testing",
		RunE: func(cmd *cobra.Command, args []string) error {
			st := newState(log, appCfg)
			block, err := st.MinePending(appCfg.MinerAddress)
			if err != nil {
				return err
			}
			log.Infow("mined block", "index", block.Header.Index, "hash", block.Hash)
			return nil
		},
	}
}

func serveCmd(log *zap.SugaredLogger, appCfg cfg) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "start the node's event loop against a single-process local transport",
		RunE: func(cmd *cobra.Command, args []string) error {
			st := newState(log, appCfg)
			transport := network.NewLocalTransport()
			adapter := &handlerAdapter{st: st}
			node := network.NewNode(transport, adapter, log)
			adapter.node = node

			transport.Subscribe(network.TopicTransactions, func(payload []byte) {
				tx, err := network.DecodeTransactionEnvelope(payload)
				if err != nil {
					log.Debugw("serve: malformed transaction message", "err", err)
					return
				}
				node.Deliver("local", network.Event{NewTransaction: &tx})
			})
			transport.Subscribe(network.TopicBlocks, func(payload []byte) {
				ev, err := network.DecodeBlockEnvelope(payload)
				if err != nil {
					log.Debugw("serve: malformed block message", "err", err)
					return
				}
				node.Deliver("local", ev)
			})

			log.Infow("serve: node running", "height", st.Height(), "peers", node.PeerCount())

			shutdown := make(chan os.Signal, 1)
			signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
			sig := <-shutdown
			log.Infow("serve: shutting down", "signal", sig.String())
			return nil
		},
	}
}

// handlerAdapter wires state.State and network.Node together to satisfy
// network.Handler: RequestChain issues a network command rather than
// answering locally, matching the simplified-sync policy on receipt of a
// single foreign block.
type handlerAdapter struct {
	st   *state.State
	node *network.Node
}

func (h *handlerAdapter) AddTransaction(tx database.Transaction) error {
	return h.st.AddTransaction(tx)
}

func (h *handlerAdapter) RequestChain() {
	_ = h.node.Do(network.Command{RequestChain: true})
}

func (h *handlerAdapter) CurrentChain() []database.Block {
	return h.st.Chain()
}

func (h *handlerAdapter) ReplaceChain(blocks []database.Block) error {
	return h.st.ReplaceChain(blocks)
}
