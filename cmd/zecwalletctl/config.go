// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btclog"
	"github.com/jessevdk/go-flags"
	"github.com/zecwallet/zecwallet/wallet"
)

const (
	defaultConfigFilename = "zecwalletctl.conf"
	defaultLogFilename    = "zecwalletctl.log"
	defaultLogDirname     = "logs"
	defaultLogLevel       = "info"
	defaultDBTimeout      = 60 * time.Second

	dbTypeBolt     = "bdb"
	dbTypeSQLite   = "sqlite"
	dbTypePostgres = "postgres"
)

var (
	defaultAppDataDir = btcutil.AppDataDir("zecwallet", false)
	defaultConfigFile = filepath.Join(defaultAppDataDir, defaultConfigFilename)
	defaultLogDir     = filepath.Join(defaultAppDataDir, defaultLogDirname)
	defaultBoltPath   = filepath.Join(defaultAppDataDir, "txrecords.db")
	defaultSQLitePath = filepath.Join(defaultAppDataDir, "txrecords.sqlite")
)

// config holds the global options shared by every command.
type config struct {
	ConfigFile string        `short:"C" long:"configfile" description:"Path to configuration file"`
	DBType     string        `long:"dbtype" description:"Record store backend" choice:"bdb" choice:"sqlite" choice:"postgres"`
	DBPath     string        `long:"dbpath" description:"Path to the bdb or sqlite database file"`
	DSN        string        `long:"dsn" description:"PostgreSQL connection string, required for --dbtype=postgres"`
	DBTimeout  time.Duration `long:"dbtimeout" description:"Timeout to obtain the bdb file lock"`
	TestNet    bool          `long:"testnet" description:"Use test network address encoding"`
	LogDir     string        `long:"logdir" description:"Directory to log output"`
	DebugLevel string        `short:"d" long:"debuglevel" description:"Logging level {trace, debug, info, warn, error, critical}"`

	out io.Writer
}

func defaultConfig() config {
	return config{
		ConfigFile: defaultConfigFile,
		DBType:     dbTypeBolt,
		DBTimeout:  defaultDBTimeout,
		LogDir:     defaultLogDir,
		DebugLevel: defaultLogLevel,
		out:        os.Stdout,
	}
}

// addressParams returns the address encoding of the configured network.
func (c *config) addressParams() *wallet.AddressParams {
	if c.TestNet {
		return &wallet.TestNetAddressParams
	}

	return &wallet.MainNetAddressParams
}

// validate fills in derived defaults and checks the options for
// consistency.
func (c *config) validate() error {
	c.DBType = strings.ToLower(c.DBType)

	switch c.DBType {
	case dbTypeBolt:
		if c.DBPath == "" {
			c.DBPath = defaultBoltPath
		}

	case dbTypeSQLite:
		if c.DBPath == "" {
			c.DBPath = defaultSQLitePath
		}

	case dbTypePostgres:
		if c.DSN == "" {
			return fmt.Errorf("--dsn is required for --dbtype=%s",
				dbTypePostgres)
		}

	default:
		return fmt.Errorf("unknown database type %q", c.DBType)
	}

	if c.DBPath != "" {
		c.DBPath = cleanAndExpandPath(c.DBPath)
	}
	c.LogDir = cleanAndExpandPath(c.LogDir)

	if _, ok := btclog.LevelFromString(c.DebugLevel); !ok {
		return fmt.Errorf("invalid debug level %q", c.DebugLevel)
	}

	return nil
}

// cleanAndExpandPath expands environment variables and a leading ~ in the
// passed path, cleans the result, and returns it.
func cleanAndExpandPath(path string) string {
	// Expand initial ~ to OS specific home directory.
	if strings.HasPrefix(path, "~") {
		homeDir := filepath.Dir(defaultAppDataDir)
		path = strings.Replace(path, "~", homeDir, 1)
	}

	return filepath.Clean(os.ExpandEnv(path))
}

// newParser builds the command parser around cfg. Options found in the
// config file are loaded first so that the command line takes precedence.
func newParser(cfg *config, args []string) (*flags.Parser, error) {
	// Pre-parse the command line options to see if an alternative config
	// file was specified. Everything else, including -h, is ignored here.
	preCfg := *cfg
	preParser := flags.NewParser(&preCfg, flags.IgnoreUnknown)
	if _, err := preParser.ParseArgs(args); err != nil {
		return nil, err
	}

	parser := flags.NewParser(cfg, flags.Default)
	if err := addCommands(parser, cfg); err != nil {
		return nil, err
	}

	err := flags.NewIniParser(parser).ParseFile(
		cleanAndExpandPath(preCfg.ConfigFile),
	)
	if err != nil {
		if _, ok := err.(*os.PathError); !ok {
			return nil, err
		}
	}

	return parser, nil
}
