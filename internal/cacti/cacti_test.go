package cacti_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nikhi9603/cachesim/internal/cacti"
)

var _ = Describe("Model", func() {
	Describe("Lookup", func() {
		It("returns a known geometry's estimate", func() {
			m := cacti.DefaultModel()

			est, ok := m.Lookup(1024, 64, 1)
			Expect(ok).To(BeTrue())
			Expect(est.HitTime).To(BeNumerically(">", 0))
		})

		It("falls back to the declined-configuration policy for an unknown geometry", func() {
			m := cacti.DefaultModel()

			est, ok := m.Lookup(3, 5, 7)
			Expect(ok).To(BeFalse())
			Expect(est.HitTime).To(Equal(cacti.FallbackHitTime))
		})
	})

	Describe("LoadModelFile / SaveModelFile", func() {
		It("round-trips the default model through a file", func() {
			dir := GinkgoT().TempDir()
			path := filepath.Join(dir, "model.json")

			m := cacti.DefaultModel()
			Expect(m.SaveModelFile(path)).To(Succeed())

			reloaded, err := cacti.LoadModelFile(path)
			Expect(err).NotTo(HaveOccurred())

			est, ok := reloaded.Lookup(1024, 64, 1)
			Expect(ok).To(BeTrue())
			Expect(est.HitTime).To(BeNumerically(">", 0))
		})

		It("rejects a model file with an invalid estimate", func() {
			dir := GinkgoT().TempDir()
			path := filepath.Join(dir, "bad.json")
			Expect(os.WriteFile(path, []byte(`[{"size":1,"block_size":1,"assoc":1,"hit_time_ns":-1}]`), 0o644)).To(Succeed())

			_, err := cacti.LoadModelFile(path)
			Expect(err).To(HaveOccurred())
		})

		It("rejects an unreadable path", func() {
			_, err := cacti.LoadModelFile(filepath.Join(GinkgoT().TempDir(), "missing.json"))
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Clone", func() {
		It("carries over the original's entries", func() {
			m := cacti.DefaultModel()
			cp := m.Clone()

			_, ok := cp.Lookup(1024, 64, 1)
			Expect(ok).To(BeTrue())
		})
	})
})
