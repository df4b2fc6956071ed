package cmd

import (
	"encoding/hex"
	"log"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/TangibleTNFT/tangible-foundation-contracts/bridge"
	"github.com/TangibleTNFT/tangible-foundation-contracts/config"
	"github.com/TangibleTNFT/tangible-foundation-contracts/db"
	"github.com/TangibleTNFT/tangible-foundation-contracts/events"
	"github.com/TangibleTNFT/tangible-foundation-contracts/jsonrpc"
	"github.com/TangibleTNFT/tangible-foundation-contracts/ledger"
	"github.com/TangibleTNFT/tangible-foundation-contracts/rebase"
	"github.com/TangibleTNFT/tangible-foundation-contracts/store"
	"github.com/TangibleTNFT/tangible-foundation-contracts/transport"
)

var (
	configPath    string
	transportPath string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the ledger node",
	Run: func(cmd *cobra.Command, args []string) {
		runNode(configPath, transportPath)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVarP(&configPath, "config", "c", "config/node.yml", "Path to the node config file")
	runCmd.Flags().StringVar(&transportPath, "transport-config", "", "Path to the transport tuning file")
}

func runNode(configPath, transportPath string) {
	cfg, err := config.LoadNodeConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	provider, err := db.NewProvider(cfg.DB.Backend, cfg.DB.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}

	accounts, err := store.NewGenericAccountStore(provider)
	if err != nil {
		log.Fatalf("Failed to initialize account store: %v", err)
	}
	states, err := store.NewGenericStateStore(provider)
	if err != nil {
		log.Fatalf("Failed to initialize state store: %v", err)
	}
	baseStore, err := store.NewGenericBaseStore(provider)
	if err != nil {
		log.Fatalf("Failed to initialize base store: %v", err)
	}
	failures, err := store.NewGenericFailureStore(provider)
	if err != nil {
		log.Fatalf("Failed to initialize failure store: %v", err)
	}

	bus := events.NewEventBus()
	baseLedger := ledger.NewBaseLedger(baseStore)

	ld, err := ledger.NewLedger(accounts, states, baseLedger, bus, cfg.InitialIndex())
	if err != nil {
		log.Fatalf("Failed to initialize ledger: %v", err)
	}

	ctrl := rebase.NewController(ld)

	tp := transport.NewTransport(cfg.ChainID, cfg.LocalAddrBytes(), failures, bus)
	applyTransportConfig(tp, cfg, transportPath)

	// cross-chain mode only when peers are configured; a standalone node
	// keeps the direct index setter
	var sync *rebase.Synchronizer
	if len(cfg.Peers) > 0 {
		sync = rebase.NewSynchronizer(ctrl)
	}

	br := bridge.NewBridge(ld, sync, tp, cfg.MainChainID, cfg.LedgerAddress, bus, nil)

	peerURLs := make(map[uint64]string)
	for _, peer := range cfg.Peers {
		if peer.URL != "" {
			peerURLs[peer.ChainID] = peer.URL
		}
	}
	endpoint := transport.NewHTTPEndpoint(tp, peerURLs)
	if cfg.ListenAddr != "" {
		go func() {
			if err := http.ListenAndServe(cfg.ListenAddr, endpoint.Handler()); err != nil {
				log.Printf("Delivery listener stopped: %v", err)
				os.Exit(1)
			}
		}()
	}

	rpc := jsonrpc.NewServer(cfg.RPCAddr, ld, ctrl, sync, br, tp)
	rpc.Start()

	log.Printf("Node running | chain=%d main=%t rpc=%s listen=%s", cfg.ChainID, br.IsMain(), cfg.RPCAddr, cfg.ListenAddr)

	// Block forever
	select {}
}

func applyTransportConfig(tp *transport.Transport, cfg *config.NodeConfig, transportPath string) {
	var tcfg *config.TransportConfig
	if transportPath != "" {
		loaded, err := config.LoadTransportConfig(transportPath)
		if err != nil {
			log.Fatalf("Failed to load transport configuration: %v", err)
		}
		tcfg = loaded
		tp.UseCustomAdapterParams(tcfg.UseCustomAdapterParams)
	}

	for _, peer := range cfg.Peers {
		tp.SetTrustedPeer(peer.ChainID, mustHex(peer.Address))
		switch {
		case peer.PayloadLimit > 0:
			tp.SetPayloadLimit(peer.ChainID, peer.PayloadLimit)
		case tcfg != nil && tcfg.MaxPayloadBytes > 0:
			tp.SetPayloadLimit(peer.ChainID, tcfg.MaxPayloadBytes)
		}
		switch {
		case peer.MinDstGas > 0:
			tp.SetMinDstGas(peer.ChainID, peer.MinDstGas)
		case tcfg != nil && tcfg.MinDstGas > 0:
			tp.SetMinDstGas(peer.ChainID, tcfg.MinDstGas)
		}
	}
}

func mustHex(s string) []byte {
	addr, err := hex.DecodeString(s)
	if err != nil {
		log.Fatalf("Invalid hex address %q: %v", s, err)
	}
	return addr
}
