package llm

// ProviderRegistry is the read side of Registry used when wiring the content
// adapter, the daemon status endpoint and the doctor command.
type ProviderRegistry interface {
	List() []string
	Get(name string) (Provider, error)
	Default() (Provider, error)
	DefaultName() string
}

var _ ProviderRegistry = (*Registry)(nil)
