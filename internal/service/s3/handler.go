package s3

import (
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/stratuslocal/stratus/internal/awsutil"
	"github.com/stratuslocal/stratus/internal/wire"
)

// Handler serves the path-style REST protocol: /{bucket}/{key...} with
// subresources selected by bare query flags (?versioning, ?tagging, ...).
type Handler struct {
	store *Store
}

func NewHandler(store *Store) http.Handler {
	h := &Handler{store: store}
	r := chi.NewRouter()
	r.Get("/", h.listBuckets)
	r.Route("/{bucket}", func(r chi.Router) {
		r.Get("/", h.bucketGet)
		r.Put("/", h.bucketPut)
		r.Post("/", h.bucketPost)
		r.Delete("/", h.bucketDelete)
		r.Head("/", h.bucketHead)
		r.Handle("/*", http.HandlerFunc(h.object))
	})
	return r
}

func (h *Handler) error(w http.ResponseWriter, r *http.Request, err error) {
	ae := wire.AsAPIError(err)
	requestID := middleware.GetReqID(r.Context())
	if requestID == "" {
		requestID = awsutil.NewID()
	}
	wire.WriteXMLError(w, ae, r.URL.Path, requestID)
}

func hasFlag(q url.Values, name string) bool {
	_, ok := q[name]
	return ok
}

func quoteETag(etag string) string { return `"` + etag + `"` }

func (h *Handler) listBuckets(w http.ResponseWriter, r *http.Request) {
	res := ListAllMyBucketsResult{
		Owner: ownerXML{ID: "stratus", DisplayName: "stratus"},
	}
	for _, b := range h.store.ListBuckets() {
		res.Buckets = append(res.Buckets, bucketXML{
			Name:         b.Name,
			CreationDate: awsutil.ISO8601Millis(b.Created),
		})
	}
	wire.WriteXML(w, http.StatusOK, res)
}

func (h *Handler) bucketGet(w http.ResponseWriter, r *http.Request) {
	bucket := chi.URLParam(r, "bucket")
	q := r.URL.Query()
	switch {
	case hasFlag(q, "versioning"):
		status, err := h.store.GetBucketVersioning(bucket)
		if err != nil {
			h.error(w, r, err)
			return
		}
		wire.WriteXML(w, http.StatusOK, VersioningConfiguration{Status: status})
	case hasFlag(q, "tagging"):
		tags, err := h.store.GetBucketTags(bucket)
		if err != nil {
			h.error(w, r, err)
			return
		}
		wire.WriteXML(w, http.StatusOK, tagging(tags))
	case hasFlag(q, "uploads"):
		ups, err := h.store.ListMultipartUploads(bucket)
		if err != nil {
			h.error(w, r, err)
			return
		}
		res := ListMultipartUploadsResult{Bucket: bucket}
		for _, up := range ups {
			res.Uploads = append(res.Uploads, uploadXML{
				Key: up.Key, UploadID: up.ID, Initiated: awsutil.ISO8601Millis(up.Initiated),
			})
		}
		wire.WriteXML(w, http.StatusOK, res)
	case hasFlag(q, "versions"):
		h.listVersions(w, r, bucket, q.Get("prefix"))
	case hasFlag(q, "location"):
		wire.WriteXML(w, http.StatusOK, LocationConstraint{Value: h.store.region})
	default:
		h.listObjects(w, r, bucket, q)
	}
}

func (h *Handler) listObjects(w http.ResponseWriter, r *http.Request, bucket string, q url.Values) {
	maxKeys := 0
	if s := q.Get("max-keys"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			h.error(w, r, errInvalidArgument("Invalid max-keys: %s", s))
			return
		}
		maxKeys = n
	}
	params := ListParams{
		Prefix:            q.Get("prefix"),
		Delimiter:         q.Get("delimiter"),
		StartAfter:        q.Get("start-after"),
		ContinuationToken: q.Get("continuation-token"),
		MaxKeys:           maxKeys,
	}
	res, err := h.store.ListObjectsV2(bucket, params)
	if err != nil {
		h.error(w, r, err)
		return
	}
	if maxKeys == 0 {
		maxKeys = 1000
	}
	doc := ListBucketResult{
		Name:                  bucket,
		Prefix:                params.Prefix,
		Delimiter:             params.Delimiter,
		StartAfter:            params.StartAfter,
		ContinuationToken:     params.ContinuationToken,
		NextContinuationToken: res.NextContinuationToken,
		MaxKeys:               maxKeys,
		IsTruncated:           res.IsTruncated,
	}
	for _, e := range res.Entries {
		if e.CommonPrefix != "" {
			doc.CommonPrefixes = append(doc.CommonPrefixes, commonPrefixXML{Prefix: e.CommonPrefix})
			continue
		}
		doc.Contents = append(doc.Contents, objectXML{
			Key:          e.Object.Key,
			LastModified: awsutil.ISO8601Millis(e.Object.LastModified),
			ETag:         quoteETag(e.Object.ETag),
			Size:         len(e.Object.Data),
			StorageClass: defaultStorageClass,
		})
	}
	doc.KeyCount = len(doc.Contents) + len(doc.CommonPrefixes)
	wire.WriteXML(w, http.StatusOK, doc)
}

func (h *Handler) listVersions(w http.ResponseWriter, r *http.Request, bucket, prefix string) {
	listing, err := h.store.ListObjectVersions(bucket, prefix)
	if err != nil {
		h.error(w, r, err)
		return
	}
	doc := ListVersionsResult{Name: bucket, Prefix: prefix, MaxKeys: 1000}
	for _, v := range listing.Versions {
		if v.DeleteMarker {
			doc.DeleteMarkers = append(doc.DeleteMarkers, deleteMarkerXML{
				Key:          v.Key,
				VersionID:    v.VersionID,
				IsLatest:     listing.Latest[v],
				LastModified: awsutil.ISO8601Millis(v.LastModified),
			})
			continue
		}
		doc.Versions = append(doc.Versions, objectVersionXML{
			Key:          v.Key,
			VersionID:    v.VersionID,
			IsLatest:     listing.Latest[v],
			LastModified: awsutil.ISO8601Millis(v.LastModified),
			ETag:         quoteETag(v.ETag),
			Size:         len(v.Data),
			StorageClass: defaultStorageClass,
		})
	}
	wire.WriteXML(w, http.StatusOK, doc)
}

func (h *Handler) bucketPut(w http.ResponseWriter, r *http.Request) {
	bucket := chi.URLParam(r, "bucket")
	q := r.URL.Query()
	switch {
	case hasFlag(q, "versioning"):
		var cfg VersioningConfiguration
		if err := xml.NewDecoder(r.Body).Decode(&cfg); err != nil {
			h.error(w, r, errMalformedXML())
			return
		}
		if err := h.store.SetBucketVersioning(bucket, cfg.Status); err != nil {
			h.error(w, r, err)
			return
		}
		w.WriteHeader(http.StatusOK)
	case hasFlag(q, "tagging"):
		tags, err := decodeTagging(r.Body)
		if err != nil {
			h.error(w, r, err)
			return
		}
		if err := h.store.SetBucketTags(bucket, tags); err != nil {
			h.error(w, r, err)
			return
		}
		w.WriteHeader(http.StatusOK)
	default:
		if err := h.store.CreateBucket(bucket); err != nil {
			h.error(w, r, err)
			return
		}
		w.Header().Set("Location", "/"+bucket)
		w.WriteHeader(http.StatusOK)
	}
}

func (h *Handler) bucketPost(w http.ResponseWriter, r *http.Request) {
	bucket := chi.URLParam(r, "bucket")
	if !hasFlag(r.URL.Query(), "delete") {
		h.error(w, r, errInvalidArgument("Unsupported bucket POST"))
		return
	}
	var req Delete
	if err := xml.NewDecoder(r.Body).Decode(&req); err != nil {
		h.error(w, r, errMalformedXML())
		return
	}
	res := DeleteResult{}
	for _, o := range req.Objects {
		del, err := h.store.DeleteObject(bucket, o.Key, o.VersionID)
		if err != nil {
			ae := wire.AsAPIError(err)
			res.Errors = append(res.Errors, deleteErrorXML{Key: o.Key, Code: ae.Code, Message: ae.Message})
			continue
		}
		if !req.Quiet {
			entry := deletedXML{Key: o.Key, VersionID: o.VersionID}
			if del.DeleteMarker {
				entry.DeleteMarker = true
				entry.DeleteMarkerVersionID = del.VersionID
			}
			res.Deleted = append(res.Deleted, entry)
		}
	}
	wire.WriteXML(w, http.StatusOK, res)
}

func (h *Handler) bucketDelete(w http.ResponseWriter, r *http.Request) {
	bucket := chi.URLParam(r, "bucket")
	if hasFlag(r.URL.Query(), "tagging") {
		if err := h.store.DeleteBucketTags(bucket); err != nil {
			h.error(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err := h.store.DeleteBucket(bucket); err != nil {
		h.error(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) bucketHead(w http.ResponseWriter, r *http.Request) {
	if err := h.store.HeadBucket(chi.URLParam(r, "bucket")); err != nil {
		w.WriteHeader(wire.AsAPIError(err).Status)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// object dispatches every /{bucket}/{key...} request. The key is taken from
// the raw path so keys containing slashes survive routing.
func (h *Handler) object(w http.ResponseWriter, r *http.Request) {
	bucket := chi.URLParam(r, "bucket")
	key := strings.TrimPrefix(r.URL.Path, "/"+bucket+"/")
	if key == "" {
		h.error(w, r, errNoSuchKey(key))
		return
	}
	switch r.Method {
	case http.MethodPut:
		h.objectPut(w, r, bucket, key)
	case http.MethodGet:
		h.objectGet(w, r, bucket, key, true)
	case http.MethodHead:
		h.objectGet(w, r, bucket, key, false)
	case http.MethodPost:
		h.objectPost(w, r, bucket, key)
	case http.MethodDelete:
		h.objectDelete(w, r, bucket, key)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func metadataFromHeaders(header http.Header) map[string]string {
	meta := map[string]string{}
	for name, vals := range header {
		if rest, ok := strings.CutPrefix(name, "X-Amz-Meta-"); ok && len(vals) > 0 {
			meta[strings.ToLower(rest)] = vals[0]
		}
	}
	return meta
}

func (h *Handler) objectPut(w http.ResponseWriter, r *http.Request, bucket, key string) {
	q := r.URL.Query()
	switch {
	case q.Get("uploadId") != "":
		partNumber, err := strconv.Atoi(q.Get("partNumber"))
		if err != nil {
			h.error(w, r, errInvalidPartNumber())
			return
		}
		data, err := io.ReadAll(r.Body)
		if err != nil {
			h.error(w, r, errInvalidArgument("unreadable body: %v", err))
			return
		}
		etag, err := h.store.UploadPart(bucket, q.Get("uploadId"), partNumber, data)
		if err != nil {
			h.error(w, r, err)
			return
		}
		w.Header().Set("ETag", quoteETag(etag))
		w.WriteHeader(http.StatusOK)
	case hasFlag(q, "tagging"):
		tags, err := decodeTagging(r.Body)
		if err != nil {
			h.error(w, r, err)
			return
		}
		if err := h.store.SetObjectTags(bucket, key, q.Get("versionId"), tags); err != nil {
			h.error(w, r, err)
			return
		}
		w.WriteHeader(http.StatusOK)
	case r.Header.Get("X-Amz-Copy-Source") != "":
		h.objectCopy(w, r, bucket, key)
	default:
		data, err := io.ReadAll(r.Body)
		if err != nil {
			h.error(w, r, errInvalidArgument("unreadable body: %v", err))
			return
		}
		obj, err := h.store.PutObject(bucket, key, data,
			r.Header.Get("Content-Type"), metadataFromHeaders(r.Header))
		if err != nil {
			h.error(w, r, err)
			return
		}
		w.Header().Set("ETag", quoteETag(obj.ETag))
		if obj.VersionID != nullVersionID {
			w.Header().Set("x-amz-version-id", obj.VersionID)
		}
		w.WriteHeader(http.StatusOK)
	}
}

// parseCopySource splits an X-Amz-Copy-Source header into bucket, key and
// optional version id. The header may be URL-encoded and may carry a
// leading slash.
func parseCopySource(src string) (bucket, key, versionID string, err error) {
	if decoded, decErr := url.QueryUnescape(src); decErr == nil {
		src = decoded
	}
	if raw, ver, found := strings.Cut(src, "?versionId="); found {
		src, versionID = raw, ver
	}
	src = strings.TrimPrefix(src, "/")
	bucket, key, found := strings.Cut(src, "/")
	if !found || bucket == "" || key == "" {
		return "", "", "", errInvalidArgument("Invalid copy source: %s", src)
	}
	return bucket, key, versionID, nil
}

func (h *Handler) objectCopy(w http.ResponseWriter, r *http.Request, bucket, key string) {
	srcBucket, srcKey, srcVersion, err := parseCopySource(r.Header.Get("X-Amz-Copy-Source"))
	if err != nil {
		h.error(w, r, err)
		return
	}
	obj, err := h.store.CopyObject(srcBucket, srcKey, srcVersion, bucket, key,
		r.Header.Get("X-Amz-Metadata-Directive"),
		r.Header.Get("Content-Type"), metadataFromHeaders(r.Header))
	if err != nil {
		h.error(w, r, err)
		return
	}
	if obj.VersionID != nullVersionID {
		w.Header().Set("x-amz-version-id", obj.VersionID)
	}
	wire.WriteXML(w, http.StatusOK, CopyObjectResult{
		ETag:         quoteETag(obj.ETag),
		LastModified: awsutil.ISO8601Millis(obj.LastModified),
	})
}

func (h *Handler) objectGet(w http.ResponseWriter, r *http.Request, bucket, key string, withBody bool) {
	q := r.URL.Query()
	switch {
	case hasFlag(q, "tagging"):
		tags, err := h.store.GetObjectTags(bucket, key, q.Get("versionId"))
		if err != nil {
			h.error(w, r, err)
			return
		}
		wire.WriteXML(w, http.StatusOK, tagging(tags))
		return
	case q.Get("uploadId") != "":
		uploadKey, parts, err := h.store.ListParts(bucket, q.Get("uploadId"))
		if err != nil {
			h.error(w, r, err)
			return
		}
		res := ListPartsResult{Bucket: bucket, Key: uploadKey, UploadID: q.Get("uploadId")}
		for _, p := range parts {
			res.Parts = append(res.Parts, partXML{
				PartNumber:   p.Number,
				LastModified: awsutil.ISO8601Millis(p.LastModified),
				ETag:         quoteETag(p.ETag),
				Size:         len(p.Data),
			})
		}
		wire.WriteXML(w, http.StatusOK, res)
		return
	}

	obj, err := h.store.GetObject(bucket, key, q.Get("versionId"))
	if err != nil {
		if withBody {
			h.error(w, r, err)
		} else {
			w.WriteHeader(wire.AsAPIError(err).Status)
		}
		return
	}

	w.Header().Set("ETag", quoteETag(obj.ETag))
	w.Header().Set("Last-Modified", obj.LastModified.UTC().Format(http.TimeFormat))
	w.Header().Set("Accept-Ranges", "bytes")
	if obj.ContentType != "" {
		w.Header().Set("Content-Type", obj.ContentType)
	} else {
		w.Header().Set("Content-Type", "application/octet-stream")
	}
	if obj.VersionID != nullVersionID {
		w.Header().Set("x-amz-version-id", obj.VersionID)
	}
	for name, value := range obj.Metadata {
		w.Header().Set("x-amz-meta-"+name, value)
	}

	body := obj.Data
	status := http.StatusOK
	if rangeHeader := r.Header.Get("Range"); rangeHeader != "" && withBody {
		start, end, err := parseRange(rangeHeader, int64(len(obj.Data)))
		if err != nil {
			h.error(w, r, err)
			return
		}
		body = obj.Data[start : end+1]
		status = http.StatusPartialContent
		w.Header().Set("Content-Range",
			fmt.Sprintf("bytes %d-%d/%d", start, end, len(obj.Data)))
	}
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(status)
	if withBody {
		_, _ = w.Write(body)
	}
}

// parseRange decodes a single "bytes=" range against size. A suffix range
// addresses the last n bytes; the end offset is clamped to the object.
func parseRange(header string, size int64) (start, end int64, err error) {
	spec, ok := strings.CutPrefix(header, "bytes=")
	if !ok || strings.Contains(spec, ",") {
		return 0, 0, errInvalidRange()
	}
	first, last, found := strings.Cut(spec, "-")
	if !found {
		return 0, 0, errInvalidRange()
	}
	if first == "" {
		n, convErr := strconv.ParseInt(last, 10, 64)
		if convErr != nil || n <= 0 {
			return 0, 0, errInvalidRange()
		}
		if n > size {
			n = size
		}
		return size - n, size - 1, nil
	}
	start, convErr := strconv.ParseInt(first, 10, 64)
	if convErr != nil || start < 0 || start >= size {
		return 0, 0, errInvalidRange()
	}
	end = size - 1
	if last != "" {
		end, convErr = strconv.ParseInt(last, 10, 64)
		if convErr != nil || end < start {
			return 0, 0, errInvalidRange()
		}
		if end > size-1 {
			end = size - 1
		}
	}
	return start, end, nil
}

func (h *Handler) objectPost(w http.ResponseWriter, r *http.Request, bucket, key string) {
	q := r.URL.Query()
	switch {
	case hasFlag(q, "uploads"):
		id, err := h.store.CreateMultipartUpload(bucket, key,
			r.Header.Get("Content-Type"), metadataFromHeaders(r.Header))
		if err != nil {
			h.error(w, r, err)
			return
		}
		wire.WriteXML(w, http.StatusOK, InitiateMultipartUploadResult{
			Bucket: bucket, Key: key, UploadID: id,
		})
	case q.Get("uploadId") != "":
		var req CompleteMultipartUpload
		if err := xml.NewDecoder(r.Body).Decode(&req); err != nil {
			h.error(w, r, errMalformedXML())
			return
		}
		obj, err := h.store.CompleteMultipartUpload(bucket, q.Get("uploadId"), req.Parts)
		if err != nil {
			h.error(w, r, err)
			return
		}
		if obj.VersionID != nullVersionID {
			w.Header().Set("x-amz-version-id", obj.VersionID)
		}
		wire.WriteXML(w, http.StatusOK, CompleteMultipartUploadResult{
			Location: "/" + bucket + "/" + key,
			Bucket:   bucket,
			Key:      key,
			ETag:     quoteETag(obj.ETag),
		})
	default:
		h.error(w, r, errInvalidArgument("Unsupported object POST"))
	}
}

func (h *Handler) objectDelete(w http.ResponseWriter, r *http.Request, bucket, key string) {
	q := r.URL.Query()
	switch {
	case q.Get("uploadId") != "":
		if err := h.store.AbortMultipartUpload(bucket, q.Get("uploadId")); err != nil {
			h.error(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	case hasFlag(q, "tagging"):
		if err := h.store.DeleteObjectTags(bucket, key, q.Get("versionId")); err != nil {
			h.error(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		res, err := h.store.DeleteObject(bucket, key, q.Get("versionId"))
		if err != nil {
			h.error(w, r, err)
			return
		}
		if res.DeleteMarker {
			w.Header().Set("x-amz-delete-marker", "true")
		}
		if res.VersionID != "" && res.VersionID != nullVersionID {
			w.Header().Set("x-amz-version-id", res.VersionID)
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func tagging(tags map[string]string) Tagging {
	doc := Tagging{TagSet: []tagXML{}}
	for k, v := range tags {
		doc.TagSet = append(doc.TagSet, tagXML{Key: k, Value: v})
	}
	sort.Slice(doc.TagSet, func(i, j int) bool { return doc.TagSet[i].Key < doc.TagSet[j].Key })
	return doc
}

func decodeTagging(body io.Reader) (map[string]string, error) {
	var doc Tagging
	if err := xml.NewDecoder(body).Decode(&doc); err != nil {
		return nil, errMalformedXML()
	}
	tags := map[string]string{}
	for _, t := range doc.TagSet {
		tags[t.Key] = t.Value
	}
	return tags, nil
}
