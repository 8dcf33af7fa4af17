package s3

import (
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/stratuslocal/stratus/internal/awsutil"
	"github.com/stratuslocal/stratus/internal/logger"
)

// nullVersionID is the version id of objects written while versioning is
// off or suspended.
const nullVersionID = "null"

const (
	versioningEnabled   = "Enabled"
	versioningSuspended = "Suspended"
)

const defaultStorageClass = "STANDARD"

// Object is one stored object version. ETag is the unquoted hex digest;
// transports add the surrounding quotes.
type Object struct {
	Key          string
	Data         []byte
	ETag         string
	ContentType  string
	Metadata     map[string]string
	Tags         map[string]string
	VersionID    string
	DeleteMarker bool
	LastModified time.Time
}

type multipartPart struct {
	Number       int
	Data         []byte
	ETag         string
	LastModified time.Time
}

type multipartUpload struct {
	ID          string
	Key         string
	ContentType string
	Metadata    map[string]string
	Initiated   time.Time
	parts       map[int]*multipartPart
}

// Bucket holds one bucket. The objects map stores the version stack for
// each key, oldest first; the last element is the current version.
type Bucket struct {
	Name       string
	Created    time.Time
	Versioning string
	Tags       map[string]string
	objects    map[string][]*Object
	uploads    map[string]*multipartUpload
}

func (b *Bucket) current(key string) *Object {
	stack := b.objects[key]
	if len(stack) == 0 {
		return nil
	}
	return stack[len(stack)-1]
}

// Store is the whole-service state.
type Store struct {
	mu      sync.RWMutex
	region  string
	buckets map[string]*Bucket
}

func NewStore(region string) *Store {
	return &Store{region: region, buckets: map[string]*Bucket{}}
}

func validBucketName(name string) bool {
	if len(name) < 3 || len(name) > 63 {
		return false
	}
	for _, c := range name {
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9', c == '-', c == '.':
		default:
			return false
		}
	}
	return name[0] != '-' && name[0] != '.' && name[len(name)-1] != '-' && name[len(name)-1] != '.'
}

func (s *Store) bucket(name string) (*Bucket, error) {
	b, ok := s.buckets[name]
	if !ok {
		return nil, errNoSuchBucket(name)
	}
	return b, nil
}

func (s *Store) CreateBucket(name string) error {
	if !validBucketName(name) {
		return errInvalidBucketName(name)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.buckets[name]; exists {
		return errBucketAlreadyOwnedByYou(name)
	}
	s.buckets[name] = &Bucket{
		Name:    name,
		Created: time.Now(),
		Tags:    map[string]string{},
		objects: map[string][]*Object{},
		uploads: map[string]*multipartUpload{},
	}
	logger.Info("bucket created", "bucket", name)
	return nil
}

func (s *Store) DeleteBucket(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, err := s.bucket(name)
	if err != nil {
		return err
	}
	if len(b.objects) > 0 || len(b.uploads) > 0 {
		return errBucketNotEmpty(name)
	}
	delete(s.buckets, name)
	logger.Info("bucket deleted", "bucket", name)
	return nil
}

func (s *Store) HeadBucket(name string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, err := s.bucket(name)
	return err
}

// BucketInfo is one entry of the bucket listing.
type BucketInfo struct {
	Name    string
	Created time.Time
}

func (s *Store) ListBuckets() []BucketInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]BucketInfo, 0, len(s.buckets))
	for _, b := range s.buckets {
		out = append(out, BucketInfo{Name: b.Name, Created: b.Created})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (s *Store) SetBucketVersioning(name, status string) error {
	if status != versioningEnabled && status != versioningSuspended {
		return errInvalidArgument("Invalid versioning status: %s", status)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	b, err := s.bucket(name)
	if err != nil {
		return err
	}
	b.Versioning = status
	return nil
}

func (s *Store) GetBucketVersioning(name string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, err := s.bucket(name)
	if err != nil {
		return "", err
	}
	return b.Versioning, nil
}

func (s *Store) SetBucketTags(name string, tags map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, err := s.bucket(name)
	if err != nil {
		return err
	}
	b.Tags = tags
	return nil
}

// GetBucketTags returns the bucket tag set; an empty set is an error, which
// is how the real service behaves.
func (s *Store) GetBucketTags(name string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, err := s.bucket(name)
	if err != nil {
		return nil, err
	}
	if len(b.Tags) == 0 {
		return nil, errNoSuchTagSet()
	}
	return b.Tags, nil
}

func (s *Store) DeleteBucketTags(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, err := s.bucket(name)
	if err != nil {
		return err
	}
	b.Tags = map[string]string{}
	return nil
}

// putLocked writes a new current version for key. With versioning enabled
// each write creates a distinct version; otherwise the null version is
// replaced in place.
func (b *Bucket) putLocked(key string, data []byte, contentType string, metadata map[string]string) *Object {
	obj := &Object{
		Key:          key,
		Data:         data,
		ETag:         awsutil.MD5Hex(data),
		ContentType:  contentType,
		Metadata:     metadata,
		Tags:         map[string]string{},
		LastModified: time.Now(),
	}
	if b.Versioning == versioningEnabled {
		obj.VersionID = awsutil.NewID()
		b.objects[key] = append(b.objects[key], obj)
		return obj
	}
	obj.VersionID = nullVersionID
	b.objects[key] = append(b.dropVersionLocked(key, nullVersionID), obj)
	return obj
}

func (b *Bucket) dropVersionLocked(key, versionID string) []*Object {
	stack := b.objects[key]
	out := stack[:0]
	for _, o := range stack {
		if o.VersionID != versionID {
			out = append(out, o)
		}
	}
	return out
}

func (s *Store) PutObject(bucket, key string, data []byte, contentType string, metadata map[string]string) (*Object, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, err := s.bucket(bucket)
	if err != nil {
		return nil, err
	}
	return b.putLocked(key, data, contentType, metadata), nil
}

func (s *Store) GetObject(bucket, key, versionID string) (*Object, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, err := s.bucket(bucket)
	if err != nil {
		return nil, err
	}
	return b.getLocked(key, versionID)
}

func (b *Bucket) getLocked(key, versionID string) (*Object, error) {
	if versionID != "" {
		for _, o := range b.objects[key] {
			if o.VersionID == versionID {
				if o.DeleteMarker {
					return nil, errNoSuchKey(key)
				}
				return o, nil
			}
		}
		return nil, errNoSuchVersion(key)
	}
	obj := b.current(key)
	if obj == nil || obj.DeleteMarker {
		return nil, errNoSuchKey(key)
	}
	return obj, nil
}

// ObjectDeleteResult reports what a single-object delete did.
type ObjectDeleteResult struct {
	DeleteMarker bool
	VersionID    string
}

func (s *Store) DeleteObject(bucket, key, versionID string) (ObjectDeleteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, err := s.bucket(bucket)
	if err != nil {
		return ObjectDeleteResult{}, err
	}
	return b.deleteLocked(key, versionID), nil
}

func (b *Bucket) deleteLocked(key, versionID string) ObjectDeleteResult {
	if versionID != "" {
		remaining := b.dropVersionLocked(key, versionID)
		if len(remaining) == 0 {
			delete(b.objects, key)
		} else {
			b.objects[key] = remaining
		}
		return ObjectDeleteResult{VersionID: versionID}
	}
	switch b.Versioning {
	case versioningEnabled, versioningSuspended:
		marker := &Object{
			Key:          key,
			DeleteMarker: true,
			VersionID:    nullVersionID,
			LastModified: time.Now(),
		}
		if b.Versioning == versioningEnabled {
			marker.VersionID = awsutil.NewID()
			b.objects[key] = append(b.objects[key], marker)
		} else {
			b.objects[key] = append(b.dropVersionLocked(key, nullVersionID), marker)
		}
		return ObjectDeleteResult{DeleteMarker: true, VersionID: marker.VersionID}
	default:
		delete(b.objects, key)
		return ObjectDeleteResult{}
	}
}

// CopyObject copies a source object (optionally a specific version) onto a
// destination key. With the REPLACE directive the supplied metadata wins;
// otherwise the source metadata is carried over.
func (s *Store) CopyObject(srcBucket, srcKey, srcVersion, dstBucket, dstKey, directive, contentType string, metadata map[string]string) (*Object, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sb, err := s.bucket(srcBucket)
	if err != nil {
		return nil, err
	}
	src, err := sb.getLocked(srcKey, srcVersion)
	if err != nil {
		return nil, err
	}
	db, err := s.bucket(dstBucket)
	if err != nil {
		return nil, err
	}

	newType := src.ContentType
	newMeta := src.Metadata
	if strings.EqualFold(directive, "REPLACE") {
		newType = contentType
		newMeta = metadata
	}
	data := make([]byte, len(src.Data))
	copy(data, src.Data)
	obj := db.putLocked(dstKey, data, newType, newMeta)
	for k, v := range src.Tags {
		obj.Tags[k] = v
	}
	return obj, nil
}

func (s *Store) SetObjectTags(bucket, key, versionID string, tags map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, err := s.bucket(bucket)
	if err != nil {
		return err
	}
	obj, err := b.getLocked(key, versionID)
	if err != nil {
		return err
	}
	obj.Tags = tags
	return nil
}

func (s *Store) GetObjectTags(bucket, key, versionID string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, err := s.bucket(bucket)
	if err != nil {
		return nil, err
	}
	obj, err := b.getLocked(key, versionID)
	if err != nil {
		return nil, err
	}
	return obj.Tags, nil
}

func (s *Store) DeleteObjectTags(bucket, key, versionID string) error {
	return s.SetObjectTags(bucket, key, versionID, map[string]string{})
}

// ListParams are the ListObjectsV2 inputs after decoding.
type ListParams struct {
	Prefix            string
	Delimiter         string
	StartAfter        string
	ContinuationToken string
	MaxKeys           int
}

// ListEntry is one row of a listing: either an object or a common prefix.
type ListEntry struct {
	Object       *Object
	CommonPrefix string
}

// ListResult is the decoded ListObjectsV2 output.
type ListResult struct {
	Entries               []ListEntry
	IsTruncated           bool
	NextContinuationToken string
}

func (s *Store) ListObjectsV2(bucket string, p ListParams) (*ListResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, err := s.bucket(bucket)
	if err != nil {
		return nil, err
	}

	max := p.MaxKeys
	if max <= 0 || max > 1000 {
		max = 1000
	}
	marker := p.StartAfter
	if p.ContinuationToken > marker {
		marker = p.ContinuationToken
	}

	var keys []string
	for key := range b.objects {
		obj := b.current(key)
		if obj == nil || obj.DeleteMarker {
			continue
		}
		if !strings.HasPrefix(key, p.Prefix) || key <= marker {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	res := &ListResult{}
	seenPrefixes := map[string]struct{}{}
	count := 0
	lastObjectKey := ""
	for _, key := range keys {
		if count >= max {
			break
		}
		if p.Delimiter != "" {
			rest := key[len(p.Prefix):]
			if idx := strings.Index(rest, p.Delimiter); idx >= 0 {
				cp := p.Prefix + rest[:idx+len(p.Delimiter)]
				if _, seen := seenPrefixes[cp]; !seen {
					seenPrefixes[cp] = struct{}{}
					res.Entries = append(res.Entries, ListEntry{CommonPrefix: cp})
					count++
				}
				continue
			}
		}
		res.Entries = append(res.Entries, ListEntry{Object: b.current(key)})
		lastObjectKey = key
		count++
	}
	// The continuation token is the last emitted object key, not the last
	// scanned one.
	if count >= max && len(keys) > max {
		res.IsTruncated = true
		res.NextContinuationToken = lastObjectKey
	}
	return res, nil
}

// VersionListing is the decoded ListObjectVersions output.
type VersionListing struct {
	Versions []*Object
	Latest   map[*Object]bool
}

func (s *Store) ListObjectVersions(bucket, prefix string) (*VersionListing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, err := s.bucket(bucket)
	if err != nil {
		return nil, err
	}
	var keys []string
	for key := range b.objects {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	out := &VersionListing{Latest: map[*Object]bool{}}
	for _, key := range keys {
		stack := b.objects[key]
		for i := len(stack) - 1; i >= 0; i-- {
			out.Versions = append(out.Versions, stack[i])
			if i == len(stack)-1 {
				out.Latest[stack[i]] = true
			}
		}
	}
	return out, nil
}

func (s *Store) CreateMultipartUpload(bucket, key, contentType string, metadata map[string]string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, err := s.bucket(bucket)
	if err != nil {
		return "", err
	}
	up := &multipartUpload{
		ID:          awsutil.NewID(),
		Key:         key,
		ContentType: contentType,
		Metadata:    metadata,
		Initiated:   time.Now(),
		parts:       map[int]*multipartPart{},
	}
	b.uploads[up.ID] = up
	return up.ID, nil
}

func (s *Store) UploadPart(bucket, uploadID string, partNumber int, data []byte) (string, error) {
	if partNumber < 1 || partNumber > 10000 {
		return "", errInvalidPartNumber()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	b, err := s.bucket(bucket)
	if err != nil {
		return "", err
	}
	up, ok := b.uploads[uploadID]
	if !ok {
		return "", errNoSuchUpload(uploadID)
	}
	part := &multipartPart{
		Number:       partNumber,
		Data:         data,
		ETag:         awsutil.MD5Hex(data),
		LastModified: time.Now(),
	}
	up.parts[partNumber] = part
	return part.ETag, nil
}

// CompleteMultipartUpload assembles the object from the listed parts. Part
// numbers must be strictly ascending and every listed part must exist with
// a matching digest. The final ETag is the digest of the concatenated raw
// part digests, suffixed with the part count.
func (s *Store) CompleteMultipartUpload(bucket, uploadID string, parts []partRequestXML) (*Object, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, err := s.bucket(bucket)
	if err != nil {
		return nil, err
	}
	up, ok := b.uploads[uploadID]
	if !ok {
		return nil, errNoSuchUpload(uploadID)
	}
	if len(parts) == 0 {
		return nil, errMalformedXML()
	}

	var body []byte
	var digests []byte
	prev := 0
	for _, p := range parts {
		if p.PartNumber <= prev {
			return nil, errInvalidPartOrder()
		}
		prev = p.PartNumber
		stored, ok := up.parts[p.PartNumber]
		if !ok {
			return nil, errInvalidPart(p.PartNumber)
		}
		if etag := strings.Trim(p.ETag, `"`); etag != "" && etag != stored.ETag {
			return nil, errInvalidPart(p.PartNumber)
		}
		body = append(body, stored.Data...)
		digests = append(digests, awsutil.HexDecode(stored.ETag)...)
	}

	obj := b.putLocked(up.Key, body, up.ContentType, up.Metadata)
	obj.ETag = awsutil.MD5Hex(digests) + "-" + strconv.Itoa(len(parts))
	delete(b.uploads, uploadID)
	return obj, nil
}

func (s *Store) AbortMultipartUpload(bucket, uploadID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, err := s.bucket(bucket)
	if err != nil {
		return err
	}
	if _, ok := b.uploads[uploadID]; !ok {
		return errNoSuchUpload(uploadID)
	}
	delete(b.uploads, uploadID)
	return nil
}

func (s *Store) ListParts(bucket, uploadID string) (string, []*multipartPart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, err := s.bucket(bucket)
	if err != nil {
		return "", nil, err
	}
	up, ok := b.uploads[uploadID]
	if !ok {
		return "", nil, errNoSuchUpload(uploadID)
	}
	parts := make([]*multipartPart, 0, len(up.parts))
	for _, p := range up.parts {
		parts = append(parts, p)
	}
	sort.Slice(parts, func(i, j int) bool { return parts[i].Number < parts[j].Number })
	return up.Key, parts, nil
}

func (s *Store) ListMultipartUploads(bucket string) ([]*multipartUpload, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, err := s.bucket(bucket)
	if err != nil {
		return nil, err
	}
	ups := make([]*multipartUpload, 0, len(b.uploads))
	for _, up := range b.uploads {
		ups = append(ups, up)
	}
	sort.Slice(ups, func(i, j int) bool {
		if ups[i].Key != ups[j].Key {
			return ups[i].Key < ups[j].Key
		}
		return ups[i].Initiated.Before(ups[j].Initiated)
	})
	return ups, nil
}
