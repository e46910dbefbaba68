package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/zerotier/zt-dnsd/internal/bootstrap"
	"github.com/zerotier/zt-dnsd/internal/central"
	zconfig "github.com/zerotier/zt-dnsd/internal/config"
	"github.com/zerotier/zt-dnsd/internal/one"
	"github.com/zerotier/zt-dnsd/internal/supervise"
	"github.com/zerotier/zt-dnsd/internal/zlog"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "start":
		err = runStart(os.Args[2:])
	case "supervise":
		err = runSupervise(os.Args[2:])
	case "unsupervise":
		err = runUnsupervise(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "zt-dnsd: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: zt-dnsd <start|supervise|unsupervise> [flags] <network-id>")
}

// sharedFlags is the StartArgs/SuperviseArgs flag shape: domain, hosts
// file, authtoken path, Central token path, wildcard, and config file.
// tlsCert/tlsKey/chainCert are only bound by "start", but live here too so
// applyConfigFile can merge every flag-backed config.File field through one
// struct.
type sharedFlags struct {
	domain         string
	hostsPath      string
	authtokenPath  string
	tokenPath      string
	wildcard       bool
	configPath     string
	tlsCert        string
	tlsKey         string
	chainCert      string
}

func bindSharedFlags(fs *flag.FlagSet, f *sharedFlags) {
	fs.StringVar(&f.domain, "d", "", "TLD to use for hostnames")
	fs.StringVar(&f.hostsPath, "f", "", "additional hosts file, /etc/hosts format")
	fs.StringVar(&f.authtokenPath, "s", "", "path to authtoken.secret (usually auto-detected)")
	fs.StringVar(&f.tokenPath, "t", "", "path to a file containing the ZeroTier Central token")
	fs.BoolVar(&f.wildcard, "w", false, "wildcard all names in Central to member IPs")
	fs.StringVar(&f.configPath, "c", "", "optional config file (yaml or json) providing defaults for the flags above")
}

// readAuthtoken loads the local-agent secret from path, falling back to the
// platform default location (spec.md §6 "Authtoken") when path is empty.
func readAuthtoken(path string) (string, error) {
	if path == "" {
		defaultPath, err := one.DefaultAuthtokenPath()
		if err != nil {
			return "", err
		}
		path = defaultPath
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read authtoken %s: %w", path, err)
	}
	return strings.TrimSpace(string(b)), nil
}

func runStart(args []string) error {
	fs := flag.NewFlagSet("start", flag.ExitOnError)
	var f sharedFlags
	bindSharedFlags(fs, &f)
	fs.StringVar(&f.tlsCert, "tls-cert", "", "TLS certificate for DNS-over-TLS")
	fs.StringVar(&f.tlsKey, "tls-key", "", "TLS private key for DNS-over-TLS")
	fs.StringVar(&f.chainCert, "chain-cert", "", "optional intermediate chain certificate for DNS-over-TLS")
	verbose := fs.Bool("v", false, "verbose logging")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("start: expected exactly one network-id argument")
	}
	networkID := fs.Arg(0)

	if *verbose {
		zlog.SetLevel(zlog.LevelDebug)
	}

	updateInterval := 30 * time.Second
	if f.configPath != "" {
		cfgFile, err := zconfig.Load(f.configPath)
		if err != nil {
			return err
		}
		applyConfigFile(&f, cfgFile)
		updateInterval, err = cfgFile.Interval(updateInterval)
		if err != nil {
			return err
		}
	}

	centralToken, err := central.ResolveToken(f.tokenPath)
	if err != nil {
		return err
	}
	authtoken, err := readAuthtoken(f.authtokenPath)
	if err != nil {
		return err
	}

	oneClient := one.NewHTTPClient("http://127.0.0.1:9993", authtoken)
	centralClient := central.NewHTTPClient(centralToken)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	rt, err := bootstrap.Start(ctx, bootstrap.Config{
		NetworkID:      networkID,
		Domain:         f.domain,
		HostsPath:      f.hostsPath,
		Wildcard:       f.wildcard,
		TLSCertFile:    f.tlsCert,
		TLSKeyFile:     f.tlsKey,
		TLSChainFile:   f.chainCert,
		UpdateInterval: updateInterval,
	}, oneClient, centralClient)
	if err != nil {
		return err
	}

	zlog.Infof("zt-dnsd: serving network %s", networkID)
	<-ctx.Done()
	zlog.Infof("zt-dnsd: shutting down")
	rt.Shutdown()
	return nil
}

// applyConfigFile fills in every still-unset flag from cfgFile, so CLI
// flags always take precedence over the config file (spec.md §5).
func applyConfigFile(f *sharedFlags, cfgFile *zconfig.File) {
	if f.domain == "" {
		f.domain = cfgFile.Domain
	}
	if f.hostsPath == "" {
		f.hostsPath = cfgFile.HostsPath
	}
	if f.authtokenPath == "" {
		f.authtokenPath = cfgFile.AuthtokenPath
	}
	if f.tokenPath == "" {
		f.tokenPath = cfgFile.TokenPath
	}
	if !f.wildcard {
		f.wildcard = cfgFile.Wildcard
	}
	if f.tlsCert == "" {
		f.tlsCert = cfgFile.TLSCert
	}
	if f.tlsKey == "" {
		f.tlsKey = cfgFile.TLSKey
	}
	if f.chainCert == "" {
		f.chainCert = cfgFile.ChainCert
	}
}

func runSupervise(args []string) error {
	fs := flag.NewFlagSet("supervise", flag.ExitOnError)
	var f sharedFlags
	bindSharedFlags(fs, &f)
	binpath := fs.String("binpath", "/usr/bin/zt-dnsd", "path to the zt-dnsd binary the unit will exec")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("supervise: expected exactly one network-id argument")
	}
	if f.configPath != "" {
		cfgFile, err := zconfig.Load(f.configPath)
		if err != nil {
			return err
		}
		applyConfigFile(&f, cfgFile)
	}

	unit := supervise.Unit{
		Binpath:       *binpath,
		Network:       fs.Arg(0),
		Domain:        f.domain,
		HostsPath:     f.hostsPath,
		AuthtokenPath: f.authtokenPath,
		TokenPath:     f.tokenPath,
		Wildcard:      f.wildcard,
	}
	path, err := unit.Install()
	if err != nil {
		return err
	}
	fmt.Printf("installed %s\nenable it with: systemctl daemon-reload && systemctl enable --now %s\n", path, filepath.Base(path))
	return nil
}

func runUnsupervise(args []string) error {
	fs := flag.NewFlagSet("unsupervise", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("unsupervise: expected exactly one network-id argument")
	}
	unit := supervise.Unit{Network: fs.Arg(0)}
	return unit.Uninstall()
}
