package provider

import (
	"os"

	"github.com/godbus/dbus/v5"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("decodeMetas", func() {
	It("should read string fields and tolerate missing ones", func() {
		raw := []map[string]dbus.Variant{
			{
				"id":          dbus.MakeVariant("620"),
				"name":        dbus.MakeVariant("Portal 2"),
				"description": dbus.MakeVariant("620"),
				"gicon":       dbus.MakeVariant("steam_icon_620"),
			},
			{
				"id":   dbus.MakeVariant("70"),
				"name": dbus.MakeVariant(uint32(7)),
			},
		}
		Expect(decodeMetas(raw)).To(Equal([]Result{
			{ID: "620", Name: "Portal 2", Description: "620", Icon: "steam_icon_620"},
			{ID: "70"},
		}))
	})
})

var _ = Describe("resolveTarget", func() {
	BeforeEach(func() {
		for _, key := range []string{"STEAM_SEARCH_BUS_NAME", "STEAM_SEARCH_OBJECT_PATH"} {
			GinkgoT().Setenv(key, "")
			Expect(os.Unsetenv(key)).To(Succeed())
		}
	})

	It("should fall back to the daemon defaults", func() {
		name, path, err := resolveTarget("", "")
		Expect(err).NotTo(HaveOccurred())
		Expect(name).To(Equal("dev.ade.Steam.SearchProvider"))
		Expect(path).To(Equal("/dev/ade/Steam/SearchProvider"))
	})

	It("should prefer the environment over defaults", func() {
		GinkgoT().Setenv("STEAM_SEARCH_BUS_NAME", "dev.ade.Test")
		name, _, err := resolveTarget("", "")
		Expect(err).NotTo(HaveOccurred())
		Expect(name).To(Equal("dev.ade.Test"))
	})

	It("should prefer explicit values", func() {
		GinkgoT().Setenv("STEAM_SEARCH_BUS_NAME", "dev.ade.Test")
		name, path, err := resolveTarget("dev.ade.Other", "/other")
		Expect(err).NotTo(HaveOccurred())
		Expect(name).To(Equal("dev.ade.Other"))
		Expect(path).To(Equal("/other"))
	})
})
