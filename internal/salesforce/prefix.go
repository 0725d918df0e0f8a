package salesforce

// Salesforce id prefixes for the two file representations.
const (
	ContentVersionPrefix  = "068"
	ContentDocumentPrefix = "069"
)

// PrefixMap maps the 3-character record-id prefix to an object type name.
// Record ids carry their object type in the first three characters by
// Salesforce convention; the mapping itself is org data, not logic, so it is
// injected wherever object types need resolving.
type PrefixMap map[string]string

// ObjectType resolves the object type for a record id. Ids that are absent,
// shorter than three characters or unknown resolve to "".
func (m PrefixMap) ObjectType(recordID string) string {
	if len(recordID) < 3 {
		return ""
	}
	return m[recordID[:3]]
}

// DefaultPrefixes returns the mapping for common standard objects. Orgs with
// custom objects should extend this from their own schema.
func DefaultPrefixes() PrefixMap {
	return PrefixMap{
		"001": "Account",
		"003": "Contact",
		"005": "User",
		"006": "Opportunity",
		"00P": "Attachment",
		"00Q": "Lead",
		"00T": "Task",
		"015": "Document",
		"068": "ContentVersion",
		"069": "ContentDocument",
		"500": "Case",
		"701": "Campaign",
		"800": "Contract",
	}
}
