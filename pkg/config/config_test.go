package config

import (
	"testing"

	. "github.com/onsi/gomega"
)

func TestNew(t *testing.T) {
	g := NewWithT(t)

	t.Run("requires exactly one action", func(t *testing.T) {
		_, err := New(Options{Prefix: "alice"})
		g.Expect(err).To(HaveOccurred())

		_, err = New(Options{Update: true, DeleteDevel: true, Prefix: "alice"})
		g.Expect(err).To(HaveOccurred())
	})

	t.Run("resolves the developer prefix", func(t *testing.T) {
		cfg, err := New(Options{Update: true, Prefix: "alice"})
		g.Expect(err).NotTo(HaveOccurred())
		g.Expect(cfg.Prefix).To(Equal("alice-"))
		g.Expect(cfg.Action).To(Equal(ActionUpdate))
	})

	t.Run("rejects an empty prefix", func(t *testing.T) {
		_, err := New(Options{Update: true})
		g.Expect(err).To(HaveOccurred())
		g.Expect(err.Error()).To(ContainSubstring("--prefix"))
	})

	t.Run("rejects a trailing separator", func(t *testing.T) {
		_, err := New(Options{Update: true, Prefix: "alice-"})
		g.Expect(err).To(HaveOccurred())
		g.Expect(err.Error()).To(ContainSubstring("must not end"))
	})

	t.Run("official implies all", func(t *testing.T) {
		cfg, err := New(Options{Update: true, Official: true, Prefix: "alice"})
		g.Expect(err).NotTo(HaveOccurred())
		g.Expect(cfg.All).To(BeTrue())
	})

	t.Run("validates the cosa image pullspec", func(t *testing.T) {
		cfg, err := New(Options{
			Update:  true,
			Prefix:  "alice",
			CosaImg: "quay.io/coreos-assembler/coreos-assembler:main",
		})
		g.Expect(err).NotTo(HaveOccurred())
		g.Expect(cfg.CosaImg).To(Equal("quay.io/coreos-assembler/coreos-assembler:main"))

		_, err = New(Options{Update: true, Prefix: "alice", CosaImg: "quay.io/coreos assembler"})
		g.Expect(err).To(HaveOccurred())
		g.Expect(err.Error()).To(ContainSubstring("--cosa-img"))
	})

	t.Run("validates the pvc size", func(t *testing.T) {
		_, err := New(Options{Update: true, Prefix: "alice", PVCSize: "100Gi"})
		g.Expect(err).NotTo(HaveOccurred())

		_, err = New(Options{Update: true, Prefix: "alice", PVCSize: "plenty"})
		g.Expect(err).To(HaveOccurred())
		g.Expect(err.Error()).To(ContainSubstring("--pvc-size"))
	})

	t.Run("defaults the oc command", func(t *testing.T) {
		cfg, err := New(Options{DeleteDevel: true, Prefix: "alice"})
		g.Expect(err).NotTo(HaveOccurred())
		g.Expect(cfg.OcCmd).To(Equal("oc"))
		g.Expect(cfg.Action).To(Equal(ActionDeleteDevel))
	})
}
