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


package core

import "errors"

// Domain validation errors
var (
	// ErrEmptyID indicates a record is missing its identifier.
	ErrEmptyID = errors.New("id cannot be empty")

	// ErrEmptyQuestion indicates the question text is empty.
	ErrEmptyQuestion = errors.New("question cannot be empty")

	// ErrQuestionTooShort indicates the question is below the minimum length.
	ErrQuestionTooShort = errors.New("question too short")

	// ErrQuestionTooLong indicates the question exceeds the maximum length.
	ErrQuestionTooLong = errors.New("question too long")

	// ErrAnswerTooShort indicates the answer is below the minimum length.
	ErrAnswerTooShort = errors.New("answer too short")

	// ErrAnswerTooLong indicates the answer exceeds the maximum length.
	ErrAnswerTooLong = errors.New("answer too long")

	// ErrMalformedQuestion indicates a long question without terminal '?'.
	ErrMalformedQuestion = errors.New("long question should end with '?'")

	// ErrInvalidMessages indicates a training example without the expected
	// system/user/assistant message triple.
	ErrInvalidMessages = errors.New("invalid messages structure")
)
