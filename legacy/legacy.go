// Package legacy knows which top-level facts are legacy (flat) facts that
// Facter 4 only reports for backwards compatibility and Facter 5 drops.
package legacy

import (
	"regexp"
	"slices"
	"strings"
)

// dynamicPatterns match legacy facts named after a device, interface,
// algorithm or zone.
var dynamicPatterns = []string{
	`^blockdevice_(?P<devicename>.+)_model$`,
	`^blockdevice_(?P<devicename>.+)_size$`,
	`^blockdevice_(?P<devicename>.+)_vendor$`,
	`^ipaddress6_(?P<interface>.+)$`,
	`^ipaddress_(?P<interface>.+)$`,
	`^macaddress_(?P<interface>.+)$`,
	`^mtu_(?P<interface>.+)$`,
	`^netmask6_(?P<interface>.+)$`,
	`^netmask_(?P<interface>.+)$`,
	`^network6_(?P<interface>.+)$`,
	`^network_(?P<interface>.+)$`,
	`^scope6_(?P<interface>.+)$`,
	`^ldom_(?P<name>.+)$`,
	`^processor\d+$`,
	`^sp_(?P<name>.+)$`,
	`^ssh(?P<algorithm>.+)key$`,
	`^sshfp_(?P<algorithm>.+)$`,
	`^zone_(?P<name>.+)_brand$`,
	`^zone_(?P<name>.+)_id$`,
	`^zone_(?P<name>.+)_iptype$`,
	`^zone_(?P<name>.+)_name$`,
	`^zone_(?P<name>.+)_path$`,
	`^zone_(?P<name>.+)_status$`,
	`^zone_(?P<name>.+)_uuid$`,
}

var (
	dynamicRegexps []*regexp.Regexp
	staticFacts    = map[string]struct{}{}
)

func init() {
	for _, p := range dynamicPatterns {
		dynamicRegexps = append(dynamicRegexps, regexp.MustCompile(p))
	}
	for _, name := range strings.Fields(`
		architecture augeasversion blockdevices bios_release_date bios_vendor
		bios_version boardassettag boardmanufacturer boardproductname
		boardserialnumber chassisassettag chassistype dhcp_servers domain fqdn
		gid hardwareisa hardwaremodel hostname id interfaces ipaddress
		ipaddress6 lsbdistcodename lsbdistdescription lsbdistid lsbdistrelease
		lsbmajdistrelease lsbminordistrelease lsbrelease macaddress
		macosx_buildversion macosx_productname macosx_productversion
		macosx_productversion_major macosx_productversion_minor
		macosx_productversion_patch manufacturer memoryfree memoryfree_mb
		memorysize memorysize_mb netmask netmask6 network network6
		operatingsystem operatingsystemmajrelease operatingsystemrelease
		osfamily physicalprocessorcount processorcount productname
		rubyplatform rubysitedir rubyversion scope6 selinux
		selinux_config_mode selinux_config_policy selinux_current_mode
		selinux_enforced selinux_policyversion serialnumber swapencrypted
		swapfree swapfree_mb swapsize swapsize_mb windows_edition_id
		windows_installation_type windows_product_name windows_release_id
		system32 uptime uptime_days uptime_hours uptime_seconds uuid
		xendomains zonename zones`) {
		staticFacts[name] = struct{}{}
	}
}

// IsLegacyFact reports whether name is a legacy fact.
func IsLegacyFact(name string) bool {
	if _, ok := staticFacts[name]; ok {
		return true
	}
	for _, re := range dynamicRegexps {
		if re.MatchString(name) {
			return true
		}
	}
	return false
}

// Names returns the fixed legacy fact names. Facts named after devices or
// interfaces are only recognized by IsLegacyFact.
func Names() []string {
	out := make([]string, 0, len(staticFacts))
	for name := range staticFacts {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}
