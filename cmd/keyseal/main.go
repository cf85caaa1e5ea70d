package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/Drayarch/genlayer-intelligent-contracts/configs"
	"github.com/Drayarch/genlayer-intelligent-contracts/internal/registry"
	"github.com/Drayarch/genlayer-intelligent-contracts/internal/security"
)

// keyseal turns a plaintext seed file into the sealed envelope the
// registry.source=sealed mode reads. Requires the RSA private key in the
// crypto config.
func main() {
	var (
		in  = flag.String("in", "", "plaintext seed YAML file")
		out = flag.String("out", "", "sealed envelope output file")
		dir = flag.String("configs", "configs", "config directory")
		env = flag.String("env", "dev", "config environment")
	)
	flag.Parse()

	if *in == "" || *out == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := configs.Load(*dir, *env)
	if err != nil {
		log.Fatal(err)
	}

	cm, err := security.LoadCryptoMaterial(cfg.Crypto)
	if err != nil {
		log.Fatal(err)
	}
	if cm.RSAPri == nil {
		log.Fatal("sealing requires crypto.rsa_pri_pem")
	}
	sealer, err := security.NewSealer(&cm)
	if err != nil {
		log.Fatal(err)
	}

	plain, err := os.ReadFile(*in)
	if err != nil {
		log.Fatal(err)
	}

	// reject bad seed files here, not at keyserver startup
	seeds, err := registry.ParseSeedYAML(plain)
	if err != nil {
		log.Fatal(err)
	}
	if _, err := registry.New(seeds); err != nil {
		log.Fatal(err)
	}

	envelope, err := security.SealEnvelope(sealer, plain)
	if err != nil {
		log.Fatal(err)
	}
	body, err := envelope.Marshal()
	if err != nil {
		log.Fatal(err)
	}
	if err := os.WriteFile(*out, body, 0o600); err != nil {
		log.Fatal(err)
	}

	fmt.Printf("sealed %d services into %s\n", len(seeds), *out)
	for _, rec := range seeds {
		fmt.Printf("  %s (%s) key=%s\n", rec.Service, rec.Provider, rec.Masked())
	}
}
