package sns

import "encoding/xml"

type responseMetadata struct {
	RequestID string `xml:"RequestId"`
}

type createTopicResponse struct {
	XMLName  xml.Name         `xml:"http://sns.amazonaws.com/doc/2010-03-31/ CreateTopicResponse"`
	TopicARN string           `xml:"CreateTopicResult>TopicArn"`
	Metadata responseMetadata `xml:"ResponseMetadata"`
}

type deleteTopicResponse struct {
	XMLName  xml.Name         `xml:"http://sns.amazonaws.com/doc/2010-03-31/ DeleteTopicResponse"`
	Metadata responseMetadata `xml:"ResponseMetadata"`
}

type topicEntry struct {
	TopicARN string `xml:"TopicArn"`
}

type listTopicsResponse struct {
	XMLName   xml.Name         `xml:"http://sns.amazonaws.com/doc/2010-03-31/ ListTopicsResponse"`
	Topics    []topicEntry     `xml:"ListTopicsResult>Topics>member"`
	NextToken string           `xml:"ListTopicsResult>NextToken,omitempty"`
	Metadata  responseMetadata `xml:"ResponseMetadata"`
}

type attributeEntry struct {
	Key   string `xml:"key"`
	Value string `xml:"value"`
}

type getTopicAttributesResponse struct {
	XMLName    xml.Name         `xml:"http://sns.amazonaws.com/doc/2010-03-31/ GetTopicAttributesResponse"`
	Attributes []attributeEntry `xml:"GetTopicAttributesResult>Attributes>entry"`
	Metadata   responseMetadata `xml:"ResponseMetadata"`
}

type setTopicAttributesResponse struct {
	XMLName  xml.Name         `xml:"http://sns.amazonaws.com/doc/2010-03-31/ SetTopicAttributesResponse"`
	Metadata responseMetadata `xml:"ResponseMetadata"`
}

type subscribeResponse struct {
	XMLName         xml.Name         `xml:"http://sns.amazonaws.com/doc/2010-03-31/ SubscribeResponse"`
	SubscriptionARN string           `xml:"SubscribeResult>SubscriptionArn"`
	Metadata        responseMetadata `xml:"ResponseMetadata"`
}

type confirmSubscriptionResponse struct {
	XMLName         xml.Name         `xml:"http://sns.amazonaws.com/doc/2010-03-31/ ConfirmSubscriptionResponse"`
	SubscriptionARN string           `xml:"ConfirmSubscriptionResult>SubscriptionArn"`
	Metadata        responseMetadata `xml:"ResponseMetadata"`
}

type unsubscribeResponse struct {
	XMLName  xml.Name         `xml:"http://sns.amazonaws.com/doc/2010-03-31/ UnsubscribeResponse"`
	Metadata responseMetadata `xml:"ResponseMetadata"`
}

type subscriptionEntry struct {
	SubscriptionARN string `xml:"SubscriptionArn"`
	Owner           string `xml:"Owner"`
	Protocol        string `xml:"Protocol"`
	Endpoint        string `xml:"Endpoint"`
	TopicARN        string `xml:"TopicArn"`
}

type listSubscriptionsResponse struct {
	XMLName       xml.Name            `xml:"http://sns.amazonaws.com/doc/2010-03-31/ ListSubscriptionsResponse"`
	Subscriptions []subscriptionEntry `xml:"ListSubscriptionsResult>Subscriptions>member"`
	NextToken     string              `xml:"ListSubscriptionsResult>NextToken,omitempty"`
	Metadata      responseMetadata    `xml:"ResponseMetadata"`
}

type listSubscriptionsByTopicResponse struct {
	XMLName       xml.Name            `xml:"http://sns.amazonaws.com/doc/2010-03-31/ ListSubscriptionsByTopicResponse"`
	Subscriptions []subscriptionEntry `xml:"ListSubscriptionsByTopicResult>Subscriptions>member"`
	NextToken     string              `xml:"ListSubscriptionsByTopicResult>NextToken,omitempty"`
	Metadata      responseMetadata    `xml:"ResponseMetadata"`
}

type getSubscriptionAttributesResponse struct {
	XMLName    xml.Name         `xml:"http://sns.amazonaws.com/doc/2010-03-31/ GetSubscriptionAttributesResponse"`
	Attributes []attributeEntry `xml:"GetSubscriptionAttributesResult>Attributes>entry"`
	Metadata   responseMetadata `xml:"ResponseMetadata"`
}

type setSubscriptionAttributesResponse struct {
	XMLName  xml.Name         `xml:"http://sns.amazonaws.com/doc/2010-03-31/ SetSubscriptionAttributesResponse"`
	Metadata responseMetadata `xml:"ResponseMetadata"`
}

type publishResponse struct {
	XMLName        xml.Name         `xml:"http://sns.amazonaws.com/doc/2010-03-31/ PublishResponse"`
	MessageID      string           `xml:"PublishResult>MessageId"`
	SequenceNumber string           `xml:"PublishResult>SequenceNumber,omitempty"`
	Metadata       responseMetadata `xml:"ResponseMetadata"`
}

type publishBatchSuccess struct {
	ID        string `xml:"Id"`
	MessageID string `xml:"MessageId"`
}

type publishBatchFailure struct {
	ID          string `xml:"Id"`
	Code        string `xml:"Code"`
	Message     string `xml:"Message"`
	SenderFault bool   `xml:"SenderFault"`
}

type publishBatchResponse struct {
	XMLName    xml.Name              `xml:"http://sns.amazonaws.com/doc/2010-03-31/ PublishBatchResponse"`
	Successful []publishBatchSuccess `xml:"PublishBatchResult>Successful>member"`
	Failed     []publishBatchFailure `xml:"PublishBatchResult>Failed>member"`
	Metadata   responseMetadata      `xml:"ResponseMetadata"`
}

type tagResourceResponse struct {
	XMLName  xml.Name         `xml:"http://sns.amazonaws.com/doc/2010-03-31/ TagResourceResponse"`
	Metadata responseMetadata `xml:"ResponseMetadata"`
}

type untagResourceResponse struct {
	XMLName  xml.Name         `xml:"http://sns.amazonaws.com/doc/2010-03-31/ UntagResourceResponse"`
	Metadata responseMetadata `xml:"ResponseMetadata"`
}

type tagEntry struct {
	Key   string `xml:"Key"`
	Value string `xml:"Value"`
}

type listTagsForResourceResponse struct {
	XMLName  xml.Name         `xml:"http://sns.amazonaws.com/doc/2010-03-31/ ListTagsForResourceResponse"`
	Tags     []tagEntry       `xml:"ListTagsForResourceResult>Tags>member"`
	Metadata responseMetadata `xml:"ResponseMetadata"`
}

type errorResponse struct {
	XMLName   xml.Name  `xml:"http://sns.amazonaws.com/doc/2010-03-31/ ErrorResponse"`
	Error     errorBody `xml:"Error"`
	RequestID string    `xml:"RequestId"`
}

type errorBody struct {
	Type    string `xml:"Type"`
	Code    string `xml:"Code"`
	Message string `xml:"Message"`
}

// notificationEnvelope is the JSON document delivered to queue subscribers
// that have not opted into raw message delivery.
type notificationEnvelope struct {
	Type              string                       `json:"Type"`
	MessageID         string                       `json:"MessageId"`
	TopicARN          string                       `json:"TopicArn"`
	Subject           string                       `json:"Subject,omitempty"`
	Message           string                       `json:"Message"`
	Timestamp         string                       `json:"Timestamp"`
	SignatureVersion  string                       `json:"SignatureVersion"`
	MessageAttributes map[string]envelopeAttribute `json:"MessageAttributes,omitempty"`
}

type envelopeAttribute struct {
	Type  string `json:"Type"`
	Value string `json:"Value"`
}
