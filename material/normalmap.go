package material

import "fmt"

// normalMapTemplate references shader programs by name, it gets
// normal map, colour map, normal map and colour map file names.
const normalMapTemplate = `    technique
    {
        pass
        {
            ambient 1 1 1
            diffuse 0 0 0 
            specular 0 0 0 0
            vertex_program_ref Ogre/BasicVertexPrograms/AmbientOneTexture
            {
                param_named_auto worldViewProj worldviewproj_matrix
                param_named_auto ambient ambient_light_colour
            }
        }
        pass
        {
            ambient 0 0 0 
            iteration once_per_light
            scene_blend add
            vertex_program_ref Examples/BumpMapVPSpecular
            {
                param_named_auto lightPosition light_position_object_space 0
                param_named_auto eyePosition camera_position_object_space
                param_named_auto worldViewProj worldviewproj_matrix
            }
            fragment_program_ref Examples/BumpMapFPSpecular
            {
                param_named_auto lightDiffuse light_diffuse_colour 0 
                param_named_auto lightSpecular light_specular_colour 0
            }
            texture_unit
            {
                texture %s
                colour_op replace
            }
            texture_unit
            {
                cubic_texture nm.png combinedUVW
                tex_coord_set 1
                tex_address_mode clamp
            }
            texture_unit
            {
                cubic_texture nm.png combinedUVW
                tex_coord_set 2
                tex_address_mode clamp
            }
        }
        pass
        {
            lighting off
            vertex_program_ref Ogre/BasicVertexPrograms/AmbientOneTexture
            {
                param_named_auto worldViewProj worldviewproj_matrix
                param_named ambient float4 1 1 1 1
            }
            scene_blend dest_colour zero
            texture_unit
            {
                texture %s
            }
        }
    }
    technique
    {
        pass
        {
            ambient 1 1 1
            diffuse 0 0 0 
            specular 0 0 0 0
            vertex_program_ref Ogre/BasicVertexPrograms/AmbientOneTexture
            {
                param_named_auto worldViewProj worldviewproj_matrix
                param_named_auto ambient ambient_light_colour
            }
        }
        pass
        {
            ambient 0 0 0 
            iteration once_per_light
            scene_blend add
            vertex_program_ref Examples/BumpMapVP
            {
                param_named_auto lightPosition light_position_object_space 0
                param_named_auto eyePosition camera_position_object_space
                param_named_auto worldViewProj worldviewproj_matrix
            }
            texture_unit
            {
                texture %s
                colour_op replace
            }
            texture_unit
            {
                cubic_texture nm.png combinedUVW
                tex_coord_set 1
                tex_address_mode clamp
                colour_op_ex dotproduct src_texture src_current
                colour_op_multipass_fallback dest_colour zero
            }
        }
        pass
        {
            lighting off
            vertex_program_ref Ogre/BasicVertexPrograms/AmbientOneTexture
            {
                param_named_auto worldViewProj worldviewproj_matrix
                param_named ambient float4 1 1 1 1
            }
            scene_blend dest_colour zero
            texture_unit
            {
                texture %s
            }
        }
    }
`

func normalMapTechniques(normalMap, colourMap string) string {
	return fmt.Sprintf(normalMapTemplate, normalMap, colourMap, normalMap, colourMap)
}
