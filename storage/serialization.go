// Copyright 2025 Atom
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package storage

import (
	"github.com/nitin-atom/finetuning-customer-support/core"
)

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, core.IDMUS.Size(id))
	core.IDMUS.Marshal(id, buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	id, _, err := core.IDMUS.Unmarshal(data)
	return id, err
}

// MarshalWorkItem serializes a WorkItem to bytes.
func MarshalWorkItem(item *core.WorkItem) []byte {
	buf := make([]byte, core.WorkItemMUS.Size(*item))
	core.WorkItemMUS.Marshal(*item, buf)
	return buf
}

// UnmarshalWorkItem deserializes a WorkItem from bytes.
func UnmarshalWorkItem(data []byte) (*core.WorkItem, error) {
	item, _, err := core.WorkItemMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// MarshalArticle serializes an Article to bytes.
func MarshalArticle(article *core.Article) []byte {
	buf := make([]byte, core.ArticleMUS.Size(*article))
	core.ArticleMUS.Marshal(*article, buf)
	return buf
}

// UnmarshalArticle deserializes an Article from bytes.
func UnmarshalArticle(data []byte) (*core.Article, error) {
	article, _, err := core.ArticleMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &article, nil
}

// MarshalQAPair serializes a QAPair to bytes.
func MarshalQAPair(pair *core.QAPair) []byte {
	buf := make([]byte, core.QAPairMUS.Size(*pair))
	core.QAPairMUS.Marshal(*pair, buf)
	return buf
}

// UnmarshalQAPair deserializes a QAPair from bytes.
func UnmarshalQAPair(data []byte) (*core.QAPair, error) {
	pair, _, err := core.QAPairMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &pair, nil
}

// MarshalCheckpoint serializes a Checkpoint to bytes.
func MarshalCheckpoint(checkpoint *core.Checkpoint) []byte {
	buf := make([]byte, core.CheckpointMUS.Size(*checkpoint))
	core.CheckpointMUS.Marshal(*checkpoint, buf)
	return buf
}

// UnmarshalCheckpoint deserializes a Checkpoint from bytes.
func UnmarshalCheckpoint(data []byte) (*core.Checkpoint, error) {
	checkpoint, _, err := core.CheckpointMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &checkpoint, nil
}
