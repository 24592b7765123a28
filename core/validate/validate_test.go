// Copyright 2024 Edulab GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
//

package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edulab/sims-console/core/dto"
)

func TestStructValid(t *testing.T) {
	assert.NoError(t, Struct(dto.College{CollegeName: "计算机学院", CollegeCode: "CS"}))
}

func TestStructReportsJSONFieldName(t *testing.T) {
	err := Struct(dto.Student{Name: "张三", Gender: "男", EnrollmentDate: "2023-09-01", ClassID: 1})
	require.Error(t, err)
	formErr := &FormError{}
	require.ErrorAs(t, err, &formErr)
	// the message names the json field, not the Go field
	assert.Contains(t, formErr.Message, "student_no")
	assert.NotContains(t, formErr.Message, "StudentNo")
}

func TestStructFirstErrorOnly(t *testing.T) {
	err := Struct(dto.Student{})
	require.Error(t, err)
	formErr := &FormError{}
	require.ErrorAs(t, err, &formErr)
	assert.NotEmpty(t, formErr.Message)
}
