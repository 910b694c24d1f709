package puppetfacts

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/voxpupuli/rspec-puppet-facts/facterdb"
	"github.com/voxpupuli/rspec-puppet-facts/legacy"
	"github.com/voxpupuli/rspec-puppet-facts/metadata"
	"github.com/voxpupuli/rspec-puppet-facts/version"
)

// Resolver resolves support matrices into fact sets.
//
// Resolution proceeds in four phases:
//  1. Filter building: every declaration, release and hardware model
//     becomes one corpus filter, with per-platform naming quirks applied.
//  2. Version resolution: for every filter the highest corpus Facter
//     version matching the request is selected, falling back to older
//     versions when needed (see package version).
//  3. Query: the corpus is queried with the selected version and every
//     fact set is keyed by its identifier ("debian-12-x86_64").
//  4. Decoration: common facts, then custom facts, are added.
//
// Results are cached per request and every call returns its own deep copy.
// A Resolver is safe for concurrent use.
type Resolver struct {
	corpus facterdb.Corpus
	cfg    *resolverConfig

	mu          sync.Mutex
	customFacts []*customFact
	common      map[string]string
	supportedOS []SupportDeclaration
	generation  uint64
	cache       resultCache
}

// New creates a resolver over corpus.
func New(corpus facterdb.Corpus, opts ...Option) (*Resolver, error) {
	if corpus == nil {
		return nil, configurationError(errors.New("fact corpus is nil"))
	}
	cfg, err := newResolverConfig(opts...)
	if err != nil {
		return nil, err
	}
	cache, err := newResultCache(cfg.resultCacheSize)
	if err != nil {
		return nil, configurationError(errors.Wrap(err, "create result cache"))
	}
	return &Resolver{
		corpus: corpus,
		cfg:    cfg,
		cache:  cache,
	}, nil
}

// OnSupportedOS resolves req into fact sets keyed by identifier
// ("<operatingsystem>-<major release>-<hardwaremodel>").
//
// Filters without fact sets, and Facter version fallbacks, are logged as
// warnings. In strict mode they fail the call with a *ResolutionMissError
// instead. An empty result is logged and returned as an empty map. Errors
// never come with a partial result.
func (r *Resolver) OnSupportedOS(ctx context.Context, req Request) (map[string]Facts, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, err := r.plan(req)
	if err != nil {
		return nil, err
	}

	key, err := p.cacheKey()
	if err != nil {
		return nil, errors.Wrap(err, "compute cache key")
	}
	if result, ok := r.cache.Get(key); ok {
		r.cfg.log().Debug("fact sets served from cache", "count", len(result))
		return result, nil
	}

	result, err := r.resolve(ctx, p)
	if err != nil {
		return nil, err
	}
	r.cache.Put(key, result)
	return result, nil
}

// AddCustomFact adds a fact to every resolved fact set, after the common
// facts. Custom facts are applied in the order they were first added;
// adding a name again replaces its earlier definition in place.
func (r *Resolver) AddCustomFact(name string, value FactValue, opts ...CustomFactOption) {
	f := &customFact{name: name, value: value}
	for _, opt := range opts {
		opt(f)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.generation++
	for i, existing := range r.customFacts {
		if existing.name == name {
			r.customFacts[i] = f
			return
		}
	}
	r.customFacts = append(r.customFacts, f)
}

// Reset removes every custom fact and forgets the computed common facts.
// Cached results are kept but no longer served, since they were computed
// with the previous custom facts; use ClearCache to release them.
func (r *Resolver) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.customFacts = nil
	r.common = nil
	r.generation++
}

// ClearCache drops every cached result.
func (r *Resolver) ClearCache() {
	r.cache.Clear()
}

// Warn logs msg at warning level. It has no other effect.
func (r *Resolver) Warn(msg string) {
	r.cfg.log().Warn(msg)
}

// plan is a normalized request.
type plan struct {
	decls          []SupportDeclaration
	hardwareModels []string
	facterVersion  string
	strict         bool
	osFilter       string
	dropLegacy     bool
	generation     uint64
}

// plan validates req and fills in the defaults. The Facter version is
// checked before anything else, so a malformed version never reaches the
// metadata file or the corpus.
func (r *Resolver) plan(req Request) (*plan, error) {
	p := &plan{
		hardwareModels: req.HardwareModels,
		facterVersion:  req.FacterVersion,
		strict:         req.Strict || r.cfg.strict,
		osFilter:       r.cfg.osFilter,
		dropLegacy:     r.cfg.dropLegacy,
		generation:     r.generation,
	}

	if p.facterVersion == "" {
		p.facterVersion = r.cfg.facterVersion
	}
	if p.facterVersion != "" {
		if err := version.Validate(p.facterVersion); err != nil {
			return nil, validationError(err)
		}
	}

	if len(p.hardwareModels) == 0 {
		p.hardwareModels = r.cfg.hardwareModels
	}
	if len(p.hardwareModels) == 0 {
		p.hardwareModels = []string{DefaultHardwareModel}
	}

	p.decls = req.SupportedOS
	if len(p.decls) == 0 {
		decls, err := r.metadataSupport()
		if err != nil {
			return nil, err
		}
		p.decls = decls
	}
	for i, decl := range p.decls {
		if err := decl.Validate(); err != nil {
			return nil, configurationError(errors.Wrapf(err, "supported os #%d", i))
		}
	}

	return p, nil
}

// metadataSupport reads the support matrix from the metadata file once.
func (r *Resolver) metadataSupport() ([]SupportDeclaration, error) {
	if r.supportedOS != nil {
		return r.supportedOS, nil
	}
	md, err := metadata.ReadFile(r.cfg.metadataPath)
	if err != nil {
		return nil, configurationError(err)
	}
	decls, err := md.SupportedOS()
	if err != nil {
		return nil, configurationError(errors.Wrapf(err, "read %s", r.cfg.metadataPath))
	}
	r.supportedOS = decls
	return decls, nil
}

// declarationKey is the cache key form of a declaration. It keeps the
// difference between a rolling release and an empty release list.
type declarationKey struct {
	OperatingSystem string   `json:"operatingsystem"`
	Releases        []string `json:"releases"`
	Rolling         bool     `json:"rolling"`
	HardwareModels  []string `json:"hardwaremodels"`
}

// cacheKey renders every input of the resolution that changes its result.
func (p *plan) cacheKey() (string, error) {
	decls := make([]declarationKey, len(p.decls))
	for i, d := range p.decls {
		decls[i] = declarationKey{
			OperatingSystem: d.OperatingSystem,
			Releases:        d.Releases,
			Rolling:         d.IsRolling(),
			HardwareModels:  d.HardwareModels,
		}
	}
	data, err := json.Marshal(struct {
		Decls          []declarationKey `json:"decls"`
		HardwareModels []string         `json:"hardware_models"`
		FacterVersion  string           `json:"facter_version"`
		Strict         bool             `json:"strict"`
		OSFilter       string           `json:"os_filter"`
		DropLegacy     bool             `json:"drop_legacy"`
		Generation     uint64           `json:"generation"`
	}{decls, p.hardwareModels, p.facterVersion, p.strict, p.osFilter, p.dropLegacy, p.generation})
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// resolve runs a resolution that missed the cache.
func (r *Resolver) resolve(ctx context.Context, p *plan) (map[string]Facts, error) {
	req := version.Any()
	if p.facterVersion != "" {
		var err error
		if req, err = version.NewRequirement(p.facterVersion); err != nil {
			return nil, validationError(err)
		}
	}

	generationVersion, err := r.generationVersion(ctx, p)
	if err != nil {
		return nil, err
	}
	filters := buildFilters(p.decls, p.hardwareModels, generationVersion)

	var (
		ids     []string
		records = make(map[string]Facts)
	)
	for _, filter := range filters {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		found, err := r.query(ctx, filter, req, p)
		if err != nil {
			return nil, err
		}
		for _, facts := range found {
			id := identifier(facts)
			if p.osFilter != "" && !strings.HasPrefix(id, p.osFilter) {
				continue
			}
			if _, seen := records[id]; !seen {
				ids = append(ids, id)
			}
			records[id] = facts
		}
	}

	result := make(map[string]Facts, len(ids))
	for _, id := range ids {
		facts := records[id]
		r.decorate(id, facts, p)
		result[id] = facts
	}

	if len(result) == 0 {
		r.Warn("No facts were found in the FacterDB for: " + filterList(filters))
	}
	return result, nil
}

// query resolves the Facter version of one filter and returns its fact
// sets. A nil result without error means the filter was dropped.
func (r *Resolver) query(ctx context.Context, filter facterdb.Filter, req version.Requirement, p *plan) ([]Facts, error) {
	versions, err := r.corpus.Versions(ctx, filter)
	if err != nil {
		return nil, errors.Wrapf(err, "list facter versions for %s", filter)
	}

	sel, ok := req.Select(versions)
	switch {
	case !ok:
		if p.strict {
			return nil, &ResolutionMissError{Filter: filter, Requested: p.facterVersion}
		}
		r.Warn(fmt.Sprintf("No facts were found in the FacterDB for %s on %s", facterLabel(p.facterVersion), filter))
		return nil, nil

	case sel.Fallback:
		if p.strict {
			return nil, &ResolutionMissError{Filter: filter, Requested: p.facterVersion, Used: sel.Version}
		}
		r.Warn(fmt.Sprintf("No facts were found in the FacterDB for %s on %s, using v%s instead",
			facterLabel(p.facterVersion), filter, sel.Version))
	}

	filter.FacterVersion = facterdb.MatchExact(sel.Version)
	found, err := r.corpus.Query(ctx, filter)
	if err != nil {
		return nil, errors.Wrapf(err, "query %s", filter)
	}
	r.cfg.log().Debug("queried fact corpus", "filter", filter.String(), "count", len(found))
	return found, nil
}

// generationVersion returns the Facter version the platform quirks are
// evaluated against: the requested one, or the newest in the corpus.
// The corpus is only consulted when a declaration depends on it.
func (r *Resolver) generationVersion(ctx context.Context, p *plan) (string, error) {
	if p.facterVersion != "" {
		return p.facterVersion, nil
	}
	needed := false
	for _, decl := range p.decls {
		if containsFold(decl.OperatingSystem, "windows") {
			needed = true
			break
		}
	}
	if !needed {
		return "", nil
	}
	versions, err := r.corpus.Versions(ctx, facterdb.Filter{})
	if err != nil {
		return "", errors.Wrap(err, "list facter versions")
	}
	newest, _ := version.Newest(versions)
	return newest, nil
}

// decorate applies, in order, legacy fact removal, common facts and
// custom facts to the fact set of id.
func (r *Resolver) decorate(id string, facts Facts, p *plan) {
	if p.dropLegacy {
		for name := range facts {
			if legacy.IsLegacyFact(name) {
				delete(facts, name)
			}
		}
	}
	for name, value := range r.commonFacts() {
		facts[name] = value
	}
	for _, f := range r.customFacts {
		f.apply(id, facts)
	}
}

// commonFacts computes the common facts once until the next Reset.
func (r *Resolver) commonFacts() map[string]string {
	if r.common == nil {
		r.common = r.cfg.commonFacts.facts()
	}
	return r.common
}

func filterList(filters []facterdb.Filter) string {
	parts := make([]string, len(filters))
	for i, f := range filters {
		parts[i] = f.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
